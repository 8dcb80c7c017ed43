package chat

import (
	"io"
	"testing"

	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/notify"
)

func newTestRegistry() *Registry {
	return NewRegistry(
		&nullAllocator{},
		&mockIngestor{},
		&mockMaterializer{},
		func(string) notify.Notifier { return notify.Discard{} },
		logger.NewWithWriter(io.Discard),
	)
}

func TestRegistry_CreateGetDelete(t *testing.T) {
	r := newTestRegistry()

	session := r.Create()
	if session.ID() == "" {
		t.Fatal("session ID should be set")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}

	got, err := r.Get(session.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != session {
		t.Error("Get returned a different session")
	}

	if err := r.Delete(session.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
	if _, err := r.Get(session.ID()); err == nil {
		t.Error("Get after Delete should fail")
	}
	if err := r.Delete(session.ID()); err == nil {
		t.Error("second Delete should fail")
	}
}
