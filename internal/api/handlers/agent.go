package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-dashboard/internal/agent"
	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/extract"
)

// StatementReader is the model behind the agent endpoint.
type StatementReader interface {
	ReadStatement(ctx context.Context, data []byte, mimeType, userMessage string) ([]domain.ExtractedRecord, error)
	Reply(ctx context.Context, history []extract.Turn, message string) (string, error)
}

// AgentHandler handles the agent's chat endpoint.
type AgentHandler struct {
	reader        StatementReader
	conversations *extract.Conversations
	log           zerolog.Logger
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(reader StatementReader, conversations *extract.Conversations, log zerolog.Logger) *AgentHandler {
	return &AgentHandler{
		reader:        reader,
		conversations: conversations,
		log:           log,
	}
}

// chatReply is the agent's wire response.
type chatReply struct {
	Response       string                   `json:"response"`
	Data           []domain.ExtractedRecord `json:"data"`
	TaskType       string                   `json:"task_type,omitempty"`
	ConversationID string                   `json:"conversation_id"`
	MessageID      string                   `json:"message_id"`
}

// Chat handles POST /api/chat. The request is multipart form data with an
// optional file part, a message field and an optional conversation_id.
func (h *AgentHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	message := r.FormValue("message")
	conversationID, history := h.conversations.Resolve(r.FormValue("conversation_id"))

	file, header, err := r.FormFile("file")
	if err != nil && err != http.ErrMissingFile {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid file field")
		return
	}

	if file == nil && strings.TrimSpace(message) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Provide a file or a message")
		return
	}

	reply := chatReply{
		Data:           []domain.ExtractedRecord{},
		ConversationID: conversationID,
		MessageID:      uuid.New().String(),
	}

	if file != nil {
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

		// Extraction failure degrades to zero records; the dashboard shows
		// the response text and nothing is imported.
		records, err := h.reader.ReadStatement(ctx, data, mimeType, message)
		if err != nil {
			h.log.Error().Err(err).Str("filename", header.Filename).Msg("Statement extraction failed")
			records = nil
		}

		reply.Data = records
		if reply.Data == nil {
			reply.Data = []domain.ExtractedRecord{}
		}
		if len(records) > 0 {
			reply.TaskType = agent.TaskTypeAddTransactions
			reply.Response = fmt.Sprintf("Found %d transactions in your statement.", len(records))
		} else {
			reply.Response = "I could not find any transactions in this statement."
		}

		h.conversations.Append(conversationID,
			fmt.Sprintf("(uploaded statement %s) %s", header.Filename, message),
			reply.Response)

		middleware.WriteJSON(w, http.StatusOK, reply)
		return
	}

	answer, err := h.reader.Reply(ctx, history, message)
	if err != nil {
		h.log.Error().Err(err).Msg("Chat reply failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to answer the message")
		return
	}

	h.conversations.Append(conversationID, message, answer)
	reply.Response = answer

	middleware.WriteJSON(w, http.StatusOK, reply)
}

// AgentRoutes wires the agent endpoints onto a mux.
func AgentRoutes(handler *AgentHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			handler.Chat(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	return mux
}
