package ecs

// Bundle is a statically-typed group of components that can be attached to
// or detached from an entity in one operation. Implementations carry
// references to the storages they touch; cmd/bundle-gen generates the
// boilerplate for plain component structs.
type Bundle interface {
	// Attach writes the bundle's component values into its storages for the
	// target entity.
	Attach(target Entity)
	// Detach removes the component values for the target entity from the
	// storages into the receiver.
	Detach(target Entity)
}

// SpawnWith spawns an entity and attaches the bundle to it.
func SpawnWith[M Bundle](archetype Archetype[M], name string, bundle M) Entity {
	target := archetype.Spawn(name)
	bundle.Attach(target)
	return target
}

// DespawnAndExtract detaches the entity's bundle into out, then despawns
// it. Detaching before the despawn keeps the storage-side removals from
// tripping the dead-entity diagnostics.
func DespawnAndExtract[M Bundle](archetype Archetype[M], entity Entity, out M) M {
	out.Detach(entity)
	archetype.Despawn(entity)
	return out
}
