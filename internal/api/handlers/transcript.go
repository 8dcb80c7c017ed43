package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// transcriptMarkdown renders assistant Markdown but escapes raw HTML, since
// message content ultimately comes from user input and the model.
var transcriptMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Transcript handles GET /api/sessions/{id}/transcript, returning the
// conversation rendered as HTML.
func (h *SessionsHandler) Transcript(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := h.registry.Get(sessionID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Session not found")
		return
	}

	var md strings.Builder
	for _, msg := range session.Messages() {
		switch msg.Role {
		case domain.RoleUser:
			md.WriteString("**You**")
		case domain.RoleAssistant:
			md.WriteString("**Assistant**")
		}
		md.WriteString(fmt.Sprintf(" · %s\n\n", msg.CreatedAt.Format("2006-01-02 15:04")))
		md.WriteString(msg.Content)
		md.WriteString("\n\n")
		if msg.Attachment != nil {
			md.WriteString(fmt.Sprintf("*Attached: %s*\n\n", msg.Attachment.Name))
		}
		md.WriteString("---\n\n")
	}

	var buf bytes.Buffer
	if err := transcriptMarkdown.Convert([]byte(md.String()), &buf); err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to render transcript")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to render transcript")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
