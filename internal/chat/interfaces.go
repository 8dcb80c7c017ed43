package chat

import (
	"context"

	"github.com/dvloznov/finance-dashboard/internal/agent"
	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// Ingestor performs one agent round trip. The production implementation is
// agent.Client; tests substitute their own.
type Ingestor interface {
	Send(ctx context.Context, message string, file *domain.Attachment, conversationID string) (*agent.Result, error)
}

// Materializer commits extracted records to the ledger and reports how many
// creates succeeded before any failure.
type Materializer interface {
	Materialize(ctx context.Context, records []domain.ExtractedRecord) (int, error)
}
