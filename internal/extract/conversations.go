package extract

import (
	"sync"

	"github.com/google/uuid"
)

// Turn is one prior exchange entry threaded back to the model.
type Turn struct {
	Role string // "user" or "model"
	Text string
}

// Conversations is the agent's in-memory conversation history, keyed by the
// identity echoed to the dashboard. History is process-lifetime only; a new
// identity is issued whenever a request arrives without one.
type Conversations struct {
	mu       sync.Mutex
	turns    map[string][]Turn
	maxTurns int
}

// NewConversations creates a store keeping at most maxTurns entries per
// conversation (oldest dropped first).
func NewConversations(maxTurns int) *Conversations {
	return &Conversations{
		turns:    make(map[string][]Turn),
		maxTurns: maxTurns,
	}
}

// Resolve returns the history for id, issuing a fresh identity when id is
// empty or unknown.
func (c *Conversations) Resolve(id string) (string, []Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == "" {
		id = uuid.New().String()
	}
	history, ok := c.turns[id]
	if !ok {
		c.turns[id] = nil
	}

	out := make([]Turn, len(history))
	copy(out, history)
	return id, out
}

// Append records one user/model exchange on the conversation.
func (c *Conversations) Append(id, userText, modelText string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	turns := append(c.turns[id], Turn{Role: "user", Text: userText}, Turn{Role: "model", Text: modelText})
	if len(turns) > c.maxTurns {
		turns = turns[len(turns)-c.maxTurns:]
	}
	c.turns[id] = turns
}
