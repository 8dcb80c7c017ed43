// Package agent is the dashboard-side client for the agent service. It sends
// one multipart request per submission and normalizes the free-form reply
// into either extracted transactions or verbatim display text.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultQuery is sent when the user submits an attachment without text, so
// an attachment-only submission still carries a meaningful query.
const DefaultQuery = "Extract transactions from this bank statement"

// RequestTimeout bounds one agent round trip. Statement extraction holds the
// request open for the full model call, so this is generous; any server that
// proxies a submission synchronously must keep its write deadline above it.
const RequestTimeout = 2 * time.Minute

// Client talks to the agent's /api/chat endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a Client for the agent at baseURL.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: RequestTimeout},
		log:        log,
	}
}

// Send performs one agent round trip. message may be empty when file is
// present; conversationID is empty on the first turn of a session. Network
// failure, a non-success status and a malformed payload all surface as a
// single wrapped error; no retries are attempted.
func (c *Client) Send(ctx context.Context, message string, file *domain.Attachment, conversationID string) (*Result, error) {
	if strings.TrimSpace(message) == "" {
		message = DefaultQuery
	}

	body, contentType, err := encodeForm(message, file, conversationID)
	if err != nil {
		return nil, fmt.Errorf("agent send: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", body)
	if err != nil {
		return nil, fmt.Errorf("agent send: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("agent send: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var payload chatResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("agent send: decoding reply: %w", err)
	}

	return normalize(payload), nil
}

// encodeForm builds the outbound multipart form: an optional file part, the
// message text part and, after the first turn, the conversation identity.
func encodeForm(message string, file *domain.Attachment, conversationID string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	if file != nil {
		part, err := w.CreatePart(fileHeader(file.Name, file.MIMEType))
		if err != nil {
			return nil, "", fmt.Errorf("creating file part: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("writing file part: %w", err)
		}
	}

	if err := w.WriteField("message", message); err != nil {
		return nil, "", fmt.Errorf("writing message field: %w", err)
	}
	if conversationID != "" {
		if err := w.WriteField("conversation_id", conversationID); err != nil {
			return nil, "", fmt.Errorf("writing conversation_id field: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

func fileHeader(filename, mimeType string) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h.Set("Content-Type", mimeType)
	return h
}

// normalize maps the raw reply to a Result. A reply with one or more records
// gets a synthesized confirmation as display text; otherwise the agent's
// answer is shown verbatim and Records stays empty (but never nil).
func normalize(payload chatResponse) *Result {
	result := &Result{
		DisplayText:    payload.Response,
		Records:        make([]domain.ExtractedRecord, 0, len(payload.Data)),
		ConversationID: payload.ConversationID,
		MessageID:      payload.MessageID,
	}

	for _, rec := range payload.Data {
		result.Records = append(result.Records, rec.toDomain())
	}

	if n := len(result.Records); n > 0 {
		noun := "transactions"
		if n == 1 {
			noun = "transaction"
		}
		result.DisplayText = fmt.Sprintf("I've extracted %d %s from your statement.", n, noun)
	}

	return result
}
