// Package bigquery is the cloud ledger backend.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/ledger"
)

const (
	transactionsTable = "transactions"
	accountsTable     = "accounts"
	dateFormat        = "2006-01-02"
)

// transactionRow is the BigQuery schema for one ledger transaction.
type transactionRow struct {
	TransactionID string     `bigquery:"transaction_id"`
	AccountID     string     `bigquery:"account_id"`
	Description   string     `bigquery:"description"`
	Amount        string     `bigquery:"amount"` // decimal string, as received
	Date          civil.Date `bigquery:"transaction_date"`
	Category      string     `bigquery:"category"`
	Type          string     `bigquery:"transaction_type"`
	Icon          string     `bigquery:"icon"`
	CreatedTS     time.Time  `bigquery:"created_ts"`
}

type accountRow struct {
	AccountID string `bigquery:"account_id"`
	Name      string `bigquery:"name"`
	Currency  string `bigquery:"currency"`
}

// Store implements ledger.Store on a BigQuery dataset.
type Store struct {
	client  *bigquery.Client
	dataset string
}

// Open creates a Store for the given project and dataset.
func Open(ctx context.Context, projectID, dataset string) (*Store, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery ledger: client: %w", err)
	}
	return &Store{client: client, dataset: dataset}, nil
}

// InsertTransaction implements ledger.Store.
func (s *Store) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	date, err := time.Parse(dateFormat, tx.Date)
	if err != nil {
		return fmt.Errorf("InsertTransaction: invalid date %q: %w", tx.Date, err)
	}

	row := &transactionRow{
		TransactionID: tx.TransactionID,
		AccountID:     tx.AccountID,
		Description:   tx.Description,
		Amount:        tx.Amount,
		Date:          civil.DateOf(date),
		Category:      tx.Category,
		Type:          tx.Type,
		Icon:          tx.Icon,
		CreatedTS:     tx.CreatedAt,
	}

	inserter := s.client.Dataset(s.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertTransaction: inserting row: %w", err)
	}
	return nil
}

// ListTransactions implements ledger.Store.
func (s *Store) ListTransactions(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			account_id,
			description,
			amount,
			transaction_date,
			category,
			transaction_type,
			icon,
			created_ts
		FROM %s.%s
		WHERE transaction_date >= @start_date
		  AND transaction_date <= @end_date
		ORDER BY transaction_date, created_ts
	`, s.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: civil.DateOf(start)},
		{Name: "end_date", Value: civil.DateOf(end)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: query read: %w", err)
	}

	var result []*domain.Transaction
	for {
		var r transactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: iterating rows: %w", err)
		}
		result = append(result, &domain.Transaction{
			TransactionID: r.TransactionID,
			AccountID:     r.AccountID,
			Description:   r.Description,
			Amount:        r.Amount,
			Date:          r.Date.String(),
			Category:      r.Category,
			Type:          r.Type,
			Icon:          r.Icon,
			CreatedAt:     r.CreatedTS,
		})
	}
	return result, nil
}

// ListAccounts implements ledger.Store.
func (s *Store) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT account_id, name, currency
		FROM %s.%s
		ORDER BY account_id
	`, s.dataset, accountsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: query read: %w", err)
	}

	var result []*domain.Account
	for {
		var r accountRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAccounts: iterating rows: %w", err)
		}
		result = append(result, &domain.Account{
			AccountID: r.AccountID,
			Name:      r.Name,
			Currency:  r.Currency,
		})
	}
	return result, nil
}

// Close implements ledger.Store.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ ledger.Store = (*Store)(nil)
