package ecs_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/plus3/gecs/ecs"
)

// logTrap captures library diagnostics so tests can assert on the
// log-and-continue paths: no unexpected errors on the happy path, exactly
// the expected records on the misuse paths.
type logTrap struct {
	mu      sync.Mutex
	records []slog.Record
}

func installLogTrap(t *testing.T) *logTrap {
	t.Helper()
	trap := &logTrap{}
	ecs.SetLogger(slog.New(trap))
	t.Cleanup(func() { ecs.SetLogger(nil) })
	return trap
}

func (h *logTrap) Enabled(context.Context, slog.Level) bool { return true }

func (h *logTrap) Handle(_ context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	return nil
}

func (h *logTrap) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *logTrap) WithGroup(string) slog.Handler      { return h }

func (h *logTrap) count(level slog.Level) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, record := range h.records {
		if record.Level == level {
			n++
		}
	}
	return n
}

func (h *logTrap) messages(level slog.Level) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var messages []string
	for _, record := range h.records {
		if record.Level == level {
			messages = append(messages, record.Message)
		}
	}
	return messages
}

func (h *logTrap) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
}

func (h *logTrap) requireNoErrors(t *testing.T) {
	t.Helper()
	if msgs := h.messages(slog.LevelError); len(msgs) > 0 {
		t.Fatalf("unexpected error logs: %v", msgs)
	}
}
