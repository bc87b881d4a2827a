// Command bundle-gen generates Attach and Detach methods for bundle structs
// so they satisfy ecs.Bundle without hand-written boilerplate.
//
// A bundle struct pairs component value fields with the storages they live
// in. A component field is matched to the storage field whose element type
// is identical:
//
//	//go:generate bundle-gen -type actorBundle
//	type actorBundle struct {
//		Position position
//		Health   health
//
//		Positions *ecs.Storage[position]
//		Healths   *ecs.Storage[health]
//	}
//
// The generated Attach adds each component value through its storage; the
// generated Detach removes the values back into the receiver.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"
)

func main() {
	typeName := flag.String("type", "", "The bundle struct type to generate methods for.")
	input := flag.String("input", "", "The source file holding the struct. Defaults to $GOFILE.")
	output := flag.String("output", "", "The output file. Defaults to <type>_bundle.go next to the input.")
	flag.Parse()

	if *typeName == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *input == "" {
		*input = os.Getenv("GOFILE")
	}
	if *input == "" {
		log.Fatal("no input file: pass -input or run under go generate")
	}

	bundle, pkgName, err := parseBundle(*input, *typeName)
	if err != nil {
		log.Fatalf("parsing %s: %v", *input, err)
	}

	src, err := render(pkgName, bundle)
	if err != nil {
		log.Fatalf("generating methods for %s: %v", *typeName, err)
	}

	if *output == "" {
		base := strings.ToLower(*typeName) + "_bundle.go"
		*output = filepath.Join(filepath.Dir(*input), base)
	}

	formatted, err := imports.Process(*output, src, nil)
	if err != nil {
		log.Fatalf("formatting output: %v", err)
	}

	if err := os.WriteFile(*output, formatted, 0o644); err != nil {
		log.Fatalf("writing %s: %v", *output, err)
	}
}

type bundleSpec struct {
	TypeName string
	Pairs    []componentPair
}

type componentPair struct {
	ComponentField string
	StorageField   string
}

func parseBundle(path, typeName string) (*bundleSpec, string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, "", err
	}

	structType := findStruct(file, typeName)
	if structType == nil {
		return nil, "", fmt.Errorf("no struct type named %s", typeName)
	}

	// First pass: collect storage fields by element type.
	storageByElem := map[string]string{}
	for _, field := range structType.Fields.List {
		elem, ok := storageElemType(field.Type)
		if !ok {
			continue
		}
		for _, name := range field.Names {
			if prev, dup := storageByElem[elem]; dup {
				return nil, "", fmt.Errorf("fields %s and %s both store %s", prev, name.Name, elem)
			}
			storageByElem[elem] = name.Name
		}
	}
	if len(storageByElem) == 0 {
		return nil, "", fmt.Errorf("%s has no *ecs.Storage[...] fields", typeName)
	}

	// Second pass: pair component fields with their storages.
	spec := &bundleSpec{TypeName: typeName}
	for _, field := range structType.Fields.List {
		if _, isStorage := storageElemType(field.Type); isStorage {
			continue
		}
		elem := typeString(field.Type)
		storage, ok := storageByElem[elem]
		if !ok {
			continue
		}
		for _, name := range field.Names {
			spec.Pairs = append(spec.Pairs, componentPair{
				ComponentField: name.Name,
				StorageField:   storage,
			})
		}
	}
	if len(spec.Pairs) == 0 {
		return nil, "", fmt.Errorf("%s has no component fields matching its storages", typeName)
	}

	return spec, file.Name.Name, nil
}

func findStruct(file *ast.File, typeName string) *ast.StructType {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, s := range genDecl.Specs {
			typeSpec, ok := s.(*ast.TypeSpec)
			if !ok || typeSpec.Name.Name != typeName {
				continue
			}
			if structType, ok := typeSpec.Type.(*ast.StructType); ok {
				return structType
			}
		}
	}
	return nil
}

// storageElemType matches *ecs.Storage[T] (or *Storage[T] inside the ecs
// package itself) and returns T's type string.
func storageElemType(expr ast.Expr) (string, bool) {
	star, ok := expr.(*ast.StarExpr)
	if !ok {
		return "", false
	}
	index, ok := star.X.(*ast.IndexExpr)
	if !ok {
		return "", false
	}

	switch base := index.X.(type) {
	case *ast.SelectorExpr:
		if base.Sel.Name != "Storage" {
			return "", false
		}
	case *ast.Ident:
		if base.Name != "Storage" {
			return "", false
		}
	default:
		return "", false
	}

	return typeString(index.Index), true
}

func typeString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return typeString(t.X) + "." + t.Sel.Name
	case *ast.StarExpr:
		return "*" + typeString(t.X)
	case *ast.IndexExpr:
		return typeString(t.X) + "[" + typeString(t.Index) + "]"
	default:
		return ""
	}
}

const methodsTemplate = `// Code generated by bundle-gen; DO NOT EDIT.

package {{.Package}}

import "github.com/plus3/gecs/ecs"

func (b *{{.Spec.TypeName}}) Attach(target ecs.Entity) {
{{- range .Spec.Pairs}}
	b.{{.StorageField}}.Add(target, b.{{.ComponentField}})
{{- end}}
}

func (b *{{.Spec.TypeName}}) Detach(target ecs.Entity) {
{{- range .Spec.Pairs}}
	b.{{.ComponentField}}, _ = b.{{.StorageField}}.TryRemove(target)
{{- end}}
}
`

func render(pkgName string, spec *bundleSpec) ([]byte, error) {
	tmpl, err := template.New("methods").Parse(methodsTemplate)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		Package string
		Spec    *bundleSpec
	}{Package: pkgName, Spec: spec})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
