package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dvloznov/finance-dashboard/internal/agent"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/extract"
	"github.com/dvloznov/finance-dashboard/internal/logger"
)

type stubReader struct {
	records     []domain.ExtractedRecord
	readErr     error
	replyText   string
	seenHistory []extract.Turn
}

func (s *stubReader) ReadStatement(_ context.Context, _ []byte, _, _ string) ([]domain.ExtractedRecord, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.records, nil
}

func (s *stubReader) Reply(_ context.Context, history []extract.Turn, _ string) (string, error) {
	s.seenHistory = history
	return s.replyText, nil
}

func newAgentServer(t *testing.T, reader *stubReader) *httptest.Server {
	t.Helper()
	handler := NewAgentHandler(reader, extract.NewConversations(20), logger.NewWithWriter(io.Discard))
	server := httptest.NewServer(AgentRoutes(handler))
	t.Cleanup(server.Close)
	return server
}

func postChat(t *testing.T, url string, fields map[string]string, file []byte, filename, fileType string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
		header["Content-Type"] = []string{fileType}
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(file); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	resp, err := http.Post(url+"/api/chat", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("post chat: %v", err)
	}
	return resp
}

func decodeReply(t *testing.T, resp *http.Response) chatReply {
	t.Helper()
	defer resp.Body.Close()
	var reply chatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	return reply
}

func TestAgentChat_RequiresFileOrMessage(t *testing.T) {
	server := newAgentServer(t, &stubReader{})
	resp := postChat(t, server.URL, map[string]string{"message": "   "}, nil, "", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAgentChat_StatementUpload(t *testing.T) {
	reader := &stubReader{records: []domain.ExtractedRecord{
		{Description: "coffee shop", Amount: "4.50", Date: "2025-03-01", Category: "Food", Type: "expense"},
		{Description: "salary", Amount: "2500", Date: "2025-03-28", Category: "Income", Type: "income"},
	}}
	server := newAgentServer(t, reader)

	resp := postChat(t, server.URL, nil, []byte("%PDF-"), "march.pdf", "application/pdf")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	reply := decodeReply(t, resp)

	if len(reply.Data) != 2 {
		t.Errorf("data length = %d, want 2", len(reply.Data))
	}
	if reply.TaskType != agent.TaskTypeAddTransactions {
		t.Errorf("task_type = %q, want %q", reply.TaskType, agent.TaskTypeAddTransactions)
	}
	if reply.ConversationID == "" || reply.MessageID == "" {
		t.Error("conversation_id and message_id should be set")
	}
}

func TestAgentChat_EmptyStatementHasNoTaskType(t *testing.T) {
	server := newAgentServer(t, &stubReader{records: []domain.ExtractedRecord{}})
	resp := postChat(t, server.URL, nil, []byte("%PDF-"), "empty.pdf", "application/pdf")
	reply := decodeReply(t, resp)
	if reply.TaskType != "" {
		t.Errorf("task_type = %q, want empty", reply.TaskType)
	}
	if len(reply.Data) != 0 {
		t.Errorf("data length = %d, want 0", len(reply.Data))
	}
}

func TestAgentChat_ExtractionFailureDegradesToZeroRecords(t *testing.T) {
	server := newAgentServer(t, &stubReader{readErr: errors.New("model unavailable")})
	resp := postChat(t, server.URL, nil, []byte("%PDF-"), "bad.pdf", "application/pdf")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	reply := decodeReply(t, resp)
	if len(reply.Data) != 0 || reply.TaskType != "" {
		t.Errorf("reply = %+v, want zero records and no task_type", reply)
	}
	if reply.Response == "" {
		t.Error("response text should still be set")
	}
}

func TestAgentChat_RejectsUnsupportedFile(t *testing.T) {
	server := newAgentServer(t, &stubReader{})
	resp := postChat(t, server.URL, nil, []byte("hello"), "notes.txt", "text/plain")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAgentChat_ThreadsConversation(t *testing.T) {
	reader := &stubReader{replyText: "Hello again!"}
	server := newAgentServer(t, reader)

	first := decodeReply(t, postChat(t, server.URL, map[string]string{"message": "hi"}, nil, "", ""))
	if first.ConversationID == "" {
		t.Fatal("first turn should issue a conversation_id")
	}
	if len(reader.seenHistory) != 0 {
		t.Errorf("first turn history = %d entries, want 0", len(reader.seenHistory))
	}

	second := decodeReply(t, postChat(t, server.URL, map[string]string{
		"message":         "and again",
		"conversation_id": first.ConversationID,
	}, nil, "", ""))
	if second.ConversationID != first.ConversationID {
		t.Errorf("conversation_id changed: %q -> %q", first.ConversationID, second.ConversationID)
	}
	if len(reader.seenHistory) != 2 {
		t.Errorf("second turn history = %d entries, want 2", len(reader.seenHistory))
	}
}
