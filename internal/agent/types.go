package agent

import (
	"encoding/json"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// TaskTypeAddTransactions marks an agent reply that carries extracted
// transactions. Present on the wire only when data is non-empty.
const TaskTypeAddTransactions = "add_transactions"

// chatResponse is the agent's reply payload.
type chatResponse struct {
	Response       string       `json:"response"`
	Data           []wireRecord `json:"data"`
	TaskType       string       `json:"task_type,omitempty"`
	ConversationID string       `json:"conversation_id,omitempty"`
	MessageID      string       `json:"message_id,omitempty"`
}

// wireRecord is one extracted transaction as the agent encodes it. Amount is
// a json.Number so both `4.5` and `"4.50"` decode without loss.
type wireRecord struct {
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	Category    string      `json:"category,omitempty"`
	Type        string      `json:"type,omitempty"`
	Icon        string      `json:"icon,omitempty"`
}

func (r wireRecord) toDomain() domain.ExtractedRecord {
	return domain.ExtractedRecord{
		Description: r.Description,
		Amount:      r.Amount.String(),
		Date:        r.Date,
		Category:    r.Category,
		Type:        r.Type,
		Icon:        r.Icon,
	}
}

// Result is the normalized outcome of one agent round trip.
// Records is always non-nil; an empty slice means the reply carried no
// structured transactions and DisplayText is the agent's answer verbatim.
type Result struct {
	DisplayText    string
	Records        []domain.ExtractedRecord
	ConversationID string
	MessageID      string
}
