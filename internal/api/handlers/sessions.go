package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/archive"
	"github.com/dvloznov/finance-dashboard/internal/chat"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/notify"
)

// maxUploadBytes bounds statement uploads. Bank statements are single
// documents; anything larger is almost certainly the wrong file.
const maxUploadBytes = 10 << 20

// supportedUploadType accepts images and PDFs, the formats the extraction
// model can read.
func supportedUploadType(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") || mimeType == "application/pdf"
}

// SessionsHandler handles the conversation endpoints.
type SessionsHandler struct {
	registry     *chat.Registry
	hub          *notify.Hub
	archiveQueue *archive.Queue
	log          zerolog.Logger
}

// NewSessionsHandler creates a new sessions handler. archiveQueue may be nil
// when no bucket is configured.
func NewSessionsHandler(registry *chat.Registry, hub *notify.Hub, archiveQueue *archive.Queue, log zerolog.Logger) *SessionsHandler {
	return &SessionsHandler{
		registry:     registry,
		hub:          hub,
		archiveQueue: archiveQueue,
		log:          log,
	}
}

// Create handles POST /api/sessions
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := h.registry.Create()
	middleware.WriteJSON(w, http.StatusCreated, map[string]string{
		"session_id": session.ID(),
	})
}

// Delete handles DELETE /api/sessions/{id}
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := h.registry.Delete(sessionID); err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	h.hub.CloseSession(sessionID)
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"status":     "deleted",
	})
}

// ListMessages handles GET /api/sessions/{id}/messages
func (h *SessionsHandler) ListMessages(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := h.registry.Get(sessionID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Session not found")
		return
	}

	messages := session.Messages()
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages":       messages,
		"count":          len(messages),
		"awaiting_reply": session.AwaitingReply(),
	})
}

// Submit handles POST /api/sessions/{id}/messages
func (h *SessionsHandler) Submit(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := h.registry.Get(sessionID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pending := session.PendingAttachment()

	reply, err := session.Submit(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrBusy) {
			middleware.WriteError(w, http.StatusConflict, "A submission is already being processed")
			return
		}
		h.log.Error().Err(err).Str("session_id", sessionID).Msg("Submission failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Submission failed")
		return
	}
	if reply == nil {
		// Empty submission, nothing to do.
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"message": nil,
		})
		return
	}

	// The statement leaves the session once the agent accepts it; archive a
	// copy in the background for later audit.
	if h.archiveQueue != nil && pending != nil && session.PendingAttachment() == nil {
		job := &archive.Job{SessionID: sessionID, Attachment: *pending}
		if err := h.archiveQueue.Enqueue(r.Context(), job); err != nil {
			h.log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to enqueue statement archive")
		}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": reply,
	})
}

// SelectAttachment handles POST /api/sessions/{id}/attachment
func (h *SessionsHandler) SelectAttachment(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := h.registry.Get(sessionID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Session not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "A file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !supportedUploadType(mimeType) {
		middleware.WriteError(w, http.StatusBadRequest, "Unsupported file type; upload a PDF or an image")
		return
	}

	attachment := &domain.Attachment{
		Name:     filepath.Base(header.Filename),
		MIMEType: mimeType,
		Data:     data,
	}
	if err := session.SelectAttachment(attachment); err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to stage attachment")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to stage attachment")
		return
	}

	pending := session.PendingAttachmentRef()
	middleware.WriteJSON(w, http.StatusOK, pending)
}

// ClearAttachment handles DELETE /api/sessions/{id}/attachment
func (h *SessionsHandler) ClearAttachment(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := h.registry.Get(sessionID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := session.SelectAttachment(nil); err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to clear attachment")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to clear attachment")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "cleared",
	})
}

// Events handles GET /api/sessions/{id}/events by upgrading to a websocket
// that streams notifications for the session.
func (h *SessionsHandler) Events(w http.ResponseWriter, r *http.Request, sessionID string) {
	if _, err := h.registry.Get(sessionID); err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	h.hub.Subscribe(w, r, sessionID)
}
