package chat

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-dashboard/internal/attach"
	"github.com/dvloznov/finance-dashboard/internal/notify"
)

// NotifierFactory returns the notifier for a newly created session. The
// dashboard binds this to the websocket hub.
type NotifierFactory func(sessionID string) notify.Notifier

// Registry holds the live sessions, keyed by session ID. Sessions are
// in-memory only; they do not survive a restart, which matches the
// browser-session lifetime of a conversation.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	allocator    attach.PreviewAllocator
	ingestor     Ingestor
	materializer Materializer
	notifiers    NotifierFactory
	log          zerolog.Logger
}

// NewRegistry creates a Registry that builds sessions from the given
// collaborators.
func NewRegistry(allocator attach.PreviewAllocator, ingestor Ingestor, materializer Materializer, notifiers NotifierFactory, log zerolog.Logger) *Registry {
	return &Registry{
		sessions:     make(map[string]*Session),
		allocator:    allocator,
		ingestor:     ingestor,
		materializer: materializer,
		notifiers:    notifiers,
		log:          log,
	}
}

// Create starts a new session and returns it.
func (r *Registry) Create() *Session {
	id := uuid.New().String()
	session := NewSession(
		id,
		attach.NewManager(r.allocator),
		r.ingestor,
		r.materializer,
		r.notifiers(id),
		r.log,
	)

	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()

	r.log.Info().Str("session_id", id).Msg("Session created")
	return session
}

// Get returns a session by ID.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return session, nil
}

// Delete tears a session down and removes it from the registry. The
// session's pending attachment, if any, is released.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("session not found: %s", id)
	}

	if err := session.Reset(); err != nil {
		return fmt.Errorf("tearing down session %s: %w", id, err)
	}

	r.log.Info().Str("session_id", id).Msg("Session deleted")
	return nil
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
