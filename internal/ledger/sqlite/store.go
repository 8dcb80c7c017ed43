// Package sqlite is the local ledger backend, backed by a single sqlite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
  account_id TEXT PRIMARY KEY,
  name       TEXT NOT NULL,
  currency   TEXT NOT NULL DEFAULT 'USD'
);

CREATE TABLE IF NOT EXISTS transactions (
  transaction_id TEXT PRIMARY KEY,
  account_id     TEXT NOT NULL,
  description    TEXT NOT NULL,
  amount         TEXT NOT NULL,
  tx_date        TEXT NOT NULL,
  category       TEXT NOT NULL,
  tx_type        TEXT NOT NULL,
  icon           TEXT NOT NULL,
  created_at     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_date
ON transactions(tx_date);

CREATE INDEX IF NOT EXISTS idx_transactions_account
ON transactions(account_id, tx_date);
`

// Store implements ledger.Store on sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the ledger database at path and ensures
// the schema and the default account exist.
func Open(path, defaultAccountID string) (*Store, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply ledger schema: %w", err)
	}

	// Seed the default account so materialized transactions always have a
	// valid association.
	_, err = db.Exec(
		`INSERT INTO accounts (account_id, name, currency) VALUES (?, ?, 'USD')
		 ON CONFLICT(account_id) DO NOTHING`,
		defaultAccountID, "Main Account",
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("seed default account: %w", err)
	}

	return &Store{db: db}, nil
}

// InsertTransaction implements ledger.Store.
func (s *Store) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions
		 (transaction_id, account_id, description, amount, tx_date, category, tx_type, icon, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.TransactionID, tx.AccountID, tx.Description, tx.Amount, tx.Date,
		tx.Category, tx.Type, tx.Icon, tx.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListTransactions implements ledger.Store. Transactions are returned oldest
// first within the inclusive date range.
func (s *Store) ListTransactions(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT transaction_id, account_id, description, amount, tx_date, category, tx_type, icon, created_at
		 FROM transactions
		 WHERE tx_date >= ? AND tx_date <= ?
		 ORDER BY tx_date, created_at`,
		start.Format("2006-01-02"), end.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var createdAt int64
		if err := rows.Scan(
			&tx.TransactionID, &tx.AccountID, &tx.Description, &tx.Amount,
			&tx.Date, &tx.Category, &tx.Type, &tx.Icon, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return result, nil
}

// ListAccounts implements ledger.Store.
func (s *Store) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT account_id, name, currency FROM accounts ORDER BY account_id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var result []*domain.Account
	for rows.Next() {
		var acc domain.Account
		if err := rows.Scan(&acc.AccountID, &acc.Name, &acc.Currency); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		result = append(result, &acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return result, nil
}

// Close implements ledger.Store.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ ledger.Store = (*Store)(nil)
