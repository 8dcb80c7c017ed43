// Package ledger turns extracted records into persisted transactions.
//
// The materializer is deliberately sequential: a failure partway through a
// batch leaves a deterministic prefix of created transactions and the rest
// unattempted. Partial success is a reported outcome, not an error state.
package ledger

import (
	"context"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// Defaults applied to extracted records before creation.
const (
	DefaultCategory = "Uncategorized"
	DefaultType     = "expense"
	DefaultIcon     = "shopping-bag"
)

// CreateRequest is the payload for one ledger-create call.
type CreateRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Icon        string `json:"icon"`
	AccountID   string `json:"accountId"`
}

// TransactionCreator issues a single ledger-create call.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, req CreateRequest) (*domain.Transaction, error)
}

// Store is the persistence layer behind the hosted ledger. Implementations
// live in the sqlite and bigquery subpackages.
type Store interface {
	InsertTransaction(ctx context.Context, tx *domain.Transaction) error
	ListTransactions(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error)
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	Close() error
}
