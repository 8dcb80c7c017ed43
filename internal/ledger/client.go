package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/google/uuid"
)

// HTTPClient is a TransactionCreator backed by a remote ledger service's
// POST /api/transactions endpoint. Used when the ledger runs out of process.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient for the ledger service at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateTransaction implements TransactionCreator.
func (c *HTTPClient) CreateTransaction(ctx context.Context, req CreateRequest) (*domain.Transaction, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("ledger create: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ledger create: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ledger create: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ledger create: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var tx domain.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&tx); err != nil {
		return nil, fmt.Errorf("ledger create: decoding response: %w", err)
	}
	return &tx, nil
}

// StoreCreator is a TransactionCreator that writes straight into a local
// Store. Used when the dashboard hosts its own ledger.
type StoreCreator struct {
	store Store
}

// NewStoreCreator wraps a Store as a TransactionCreator.
func NewStoreCreator(store Store) *StoreCreator {
	return &StoreCreator{store: store}
}

// CreateTransaction implements TransactionCreator.
func (s *StoreCreator) CreateTransaction(ctx context.Context, req CreateRequest) (*domain.Transaction, error) {
	tx := &domain.Transaction{
		TransactionID: uuid.New().String(),
		AccountID:     req.AccountID,
		Description:   req.Description,
		Amount:        req.Amount,
		Date:          req.Date,
		Category:      req.Category,
		Type:          req.Type,
		Icon:          req.Icon,
		CreatedAt:     time.Now(),
	}
	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("ledger create: %w", err)
	}
	return tx, nil
}

var _ TransactionCreator = (*HTTPClient)(nil)
var _ TransactionCreator = (*StoreCreator)(nil)
