package domain

import (
	"time"
)

// Role identifies which side of the conversation authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Attachment is a file the user selected for upload alongside a chat message.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

// AttachmentRef is the metadata recorded on a chat message for an attachment
// that was submitted with it. The bytes themselves are not retained on the
// message log; PreviewHandle points at the preview store entry while it lives.
type AttachmentRef struct {
	Name          string `json:"name"`
	MIMEType      string `json:"mime_type"`
	PreviewHandle string `json:"preview_handle,omitempty"`
}

// ChatMessage is one entry in a session's append-only message log.
// Once appended a message is never mutated.
type ChatMessage struct {
	ID         string         `json:"id"` // ULID, time-ordered
	Role       Role           `json:"role"`
	Content    string         `json:"content"`
	Attachment *AttachmentRef `json:"attachment,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ExtractedRecord is a candidate transaction parsed from the agent's reply,
// prior to ledger persistence. Amount is kept as a decimal string so that
// values pass through to the ledger without float round-tripping.
// Category, Type and Icon may be empty; the materializer applies defaults.
type ExtractedRecord struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"` // YYYY-MM-DD
	Category    string `json:"category,omitempty"`
	Type        string `json:"type,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// Transaction is a persisted ledger entry.
type Transaction struct {
	TransactionID string    `json:"transaction_id"`
	AccountID     string    `json:"account_id"`
	Description   string    `json:"description"`
	Amount        string    `json:"amount"`
	Date          string    `json:"date"` // YYYY-MM-DD
	Category      string    `json:"category"`
	Type          string    `json:"type"`
	Icon          string    `json:"icon"`
	CreatedAt     time.Time `json:"created_at"`
}

// Account is a ledger account that transactions are associated with.
type Account struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
}
