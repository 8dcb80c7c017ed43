package ledger

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/rs/zerolog"
)

// Materializer converts extracted records into ledger-create calls.
type Materializer struct {
	creator   TransactionCreator
	accountID string
	log       zerolog.Logger
}

// NewMaterializer creates a Materializer. accountID is the default account
// every materialized transaction is associated with.
func NewMaterializer(creator TransactionCreator, accountID string, log zerolog.Logger) *Materializer {
	return &Materializer{
		creator:   creator,
		accountID: accountID,
		log:       log,
	}
}

// Materialize creates one transaction per record, in order, stopping at the
// first failure. It returns how many creates succeeded; on failure the
// already-created prefix stays persisted (no rollback) and the error carries
// the failing record's position.
func (m *Materializer) Materialize(ctx context.Context, records []domain.ExtractedRecord) (int, error) {
	succeeded := 0

	for i, rec := range records {
		req := m.buildRequest(rec)

		if _, err := m.creator.CreateTransaction(ctx, req); err != nil {
			m.log.Error().
				Err(err).
				Int("record", i).
				Int("succeeded", succeeded).
				Str("description", rec.Description).
				Msg("Transaction create failed, stopping batch")
			return succeeded, fmt.Errorf("creating transaction %d of %d: %w", i+1, len(records), err)
		}

		succeeded++
	}

	return succeeded, nil
}

// buildRequest applies the category/type/icon defaults and the default
// account association.
func (m *Materializer) buildRequest(rec domain.ExtractedRecord) CreateRequest {
	req := CreateRequest{
		Description: rec.Description,
		Amount:      rec.Amount,
		Date:        rec.Date,
		Category:    rec.Category,
		Type:        rec.Type,
		Icon:        rec.Icon,
		AccountID:   m.accountID,
	}
	if req.Category == "" {
		req.Category = DefaultCategory
	}
	if req.Type == "" {
		req.Type = DefaultType
	}
	if req.Icon == "" {
		req.Icon = DefaultIcon
	}
	return req
}
