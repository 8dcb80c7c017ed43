// Package chat owns the conversation session: the append-only message log,
// the conversation identity issued by the agent, and the single-flight guard
// that keeps assistant replies in submission order.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-dashboard/internal/attach"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/notify"
)

// FallbackReply is appended as the assistant message whenever any stage of a
// submission fails. The chat log never carries raw error detail; that goes
// through the notification channel.
const FallbackReply = "Sorry, something went wrong while processing your request. Please try again."

// ErrBusy is returned when a submission arrives while a previous one is
// still in flight. One ingestion request per session at a time; a rejected
// submission leaves no trace in the message log.
var ErrBusy = errors.New("a submission is already in flight")

// Session is one user's conversation with the agent. All methods are safe
// for concurrent use, but only one submission is processed at a time.
type Session struct {
	id string

	mu             sync.Mutex
	messages       []domain.ChatMessage
	conversationID string
	awaiting       bool

	attachments  *attach.Manager
	ingestor     Ingestor
	materializer Materializer
	notifier     notify.Notifier
	log          zerolog.Logger
}

// NewSession creates a Session with the given collaborators.
func NewSession(id string, attachments *attach.Manager, ingestor Ingestor, materializer Materializer, notifier notify.Notifier, log zerolog.Logger) *Session {
	return &Session{
		id:           id,
		attachments:  attachments,
		ingestor:     ingestor,
		materializer: materializer,
		notifier:     notifier,
		log:          log.With().Str("session_id", id).Logger(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// AwaitingReply reports whether an ingestion request is in flight. Callers
// use it to disable resubmission in the UI.
func (s *Session) AwaitingReply() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

// Messages returns a copy of the message log in append order.
func (s *Session) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// ConversationID returns the identity issued by the agent, or empty before
// the first successful turn.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// SelectAttachment stages a file for the next submission (or clears the
// pending one when file is nil), delegating lifecycle rules to the
// attachment manager.
func (s *Session) SelectAttachment(file *domain.Attachment) error {
	return s.attachments.Select(file)
}

// PendingAttachment returns a copy of the staged file, or nil.
func (s *Session) PendingAttachment() *domain.Attachment {
	pending := s.attachments.Current()
	if pending == nil {
		return nil
	}
	file := pending.File
	return &file
}

// PendingAttachmentRef describes the staged file without its bytes, for
// rendering in the composer.
func (s *Session) PendingAttachmentRef() *domain.AttachmentRef {
	pending := s.attachments.Current()
	if pending == nil {
		return nil
	}
	return &domain.AttachmentRef{
		Name:          pending.File.Name,
		MIMEType:      pending.File.MIMEType,
		PreviewHandle: pending.PreviewHandle,
	}
}

// Submit runs one full exchange: append the user message, call the agent,
// materialize any extracted transactions, and append exactly one assistant
// message. It returns the assistant message, or (nil, nil) when the
// submission was an empty no-op, or ErrBusy when a previous submission is
// still in flight.
func (s *Session) Submit(ctx context.Context, rawText string) (*domain.ChatMessage, error) {
	text := strings.TrimSpace(rawText)
	pending := s.attachments.Current()

	// Empty submission: nothing to say, nothing attached.
	if text == "" && pending == nil {
		return nil, nil
	}

	s.mu.Lock()
	if s.awaiting {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.awaiting = true

	userMsg := newMessage(domain.RoleUser, rawText)
	if pending != nil {
		userMsg.Attachment = &domain.AttachmentRef{
			Name:          pending.File.Name,
			MIMEType:      pending.File.MIMEType,
			PreviewHandle: pending.PreviewHandle,
		}
	}
	s.messages = append(s.messages, userMsg)
	conversationID := s.conversationID
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.awaiting = false
		s.mu.Unlock()
	}()

	var file *domain.Attachment
	if pending != nil {
		file = &pending.File
	}

	result, err := s.ingestor.Send(ctx, text, file, conversationID)
	if err != nil {
		s.log.Error().Err(err).Msg("Agent call failed")
		msg := s.fail("Chat failed", err.Error())
		return &msg, nil
	}

	// The agent accepted the submission; the pending attachment and its
	// preview handle are done. On failure above it stays staged so the
	// user can resubmit.
	if pending != nil {
		if err := s.attachments.Clear(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to release submitted attachment")
		}
	}

	s.mu.Lock()
	if result.ConversationID != "" {
		s.conversationID = result.ConversationID
	}
	s.mu.Unlock()

	if len(result.Records) > 0 {
		n, err := s.materializer.Materialize(ctx, result.Records)
		if err != nil {
			s.log.Error().Err(err).Int("succeeded", n).Msg("Materialization failed")
			detail := fmt.Sprintf("Imported %d of %d transactions before an error: %v", n, len(result.Records), err)
			msg := s.fail("Import failed", detail)
			return &msg, nil
		}

		s.notifier.Notify(notify.Notification{
			Title:       "Transactions added",
			Description: fmt.Sprintf("%d transactions imported to your ledger", n),
			Severity:    notify.SeveritySuccess,
		})
	}

	assistantMsg := newMessage(domain.RoleAssistant, result.DisplayText)

	s.mu.Lock()
	s.messages = append(s.messages, assistantMsg)
	s.mu.Unlock()

	return &assistantMsg, nil
}

// Reset discards all in-memory state and releases any pending attachment.
// The session is reusable afterwards; the next turn starts a fresh agent
// conversation.
func (s *Session) Reset() error {
	s.mu.Lock()
	s.messages = nil
	s.conversationID = ""
	s.awaiting = false
	s.mu.Unlock()

	return s.attachments.Teardown()
}

// fail appends the fixed fallback assistant message and raises an error
// notification carrying the underlying detail.
func (s *Session) fail(title, detail string) domain.ChatMessage {
	msg := newMessage(domain.RoleAssistant, FallbackReply)

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	s.notifier.Notify(notify.Notification{
		Title:       title,
		Description: detail,
		Severity:    notify.SeverityError,
	})
	return msg
}

func newMessage(role domain.Role, content string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        ulid.Make().String(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
