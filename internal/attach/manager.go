// Package attach owns the pending chat attachment and its preview handle.
//
// At most one attachment is pending at a time. A preview handle, once
// allocated, is released exactly once: before being replaced by a new
// selection, on explicit clearing, after a successful submission, or on
// session teardown.
package attach

import (
	"fmt"
	"sync"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// PreviewAllocator creates and releases preview handles for selected files.
// The production implementation is the in-memory Store in this package;
// tests substitute their own.
type PreviewAllocator interface {
	// Allocate binds a preview handle to the file and returns it.
	Allocate(file domain.Attachment) (string, error)

	// Release frees a previously allocated handle.
	Release(handle string) error
}

// Pending is the attachment currently staged for the next submission.
type Pending struct {
	File          domain.Attachment
	PreviewHandle string
}

// Manager tracks the single pending attachment for one session.
// All methods are safe for concurrent use.
type Manager struct {
	mu        sync.Mutex
	allocator PreviewAllocator
	pending   *Pending
}

// NewManager creates a Manager backed by the given allocator.
func NewManager(allocator PreviewAllocator) *Manager {
	return &Manager{allocator: allocator}
}

// Select stages file as the pending attachment, releasing any previous
// preview handle first. A nil file clears the pending attachment.
func (m *Manager) Select(file *domain.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.releaseLocked(); err != nil {
		return err
	}

	if file == nil {
		return nil
	}

	handle, err := m.allocator.Allocate(*file)
	if err != nil {
		return fmt.Errorf("allocate preview: %w", err)
	}

	m.pending = &Pending{File: *file, PreviewHandle: handle}
	return nil
}

// Clear removes the pending attachment, releasing its preview handle.
func (m *Manager) Clear() error {
	return m.Select(nil)
}

// Current returns the pending attachment without consuming it, or nil.
// The session reads it at submit time and calls Clear once the submission
// has succeeded; on failure the attachment stays pending for a resubmit.
func (m *Manager) Current() *Pending {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// Teardown releases any live preview handle. Idempotent.
func (m *Manager) Teardown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releaseLocked()
}

// releaseLocked frees the current handle, if any. Caller holds mu.
func (m *Manager) releaseLocked() error {
	if m.pending == nil {
		return nil
	}
	handle := m.pending.PreviewHandle
	m.pending = nil
	if handle == "" {
		return nil
	}
	if err := m.allocator.Release(handle); err != nil {
		return fmt.Errorf("release preview %s: %w", handle, err)
	}
	return nil
}
