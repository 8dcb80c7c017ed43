package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/ledger"
)

// LedgerHandler handles the hosted ledger endpoints.
type LedgerHandler struct {
	store            ledger.Store
	defaultAccountID string
	log              zerolog.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(store ledger.Store, defaultAccountID string, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{
		store:            store,
		defaultAccountID: defaultAccountID,
		log:              log,
	}
}

// ListTransactions handles GET /api/transactions
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	startDateStr := query.Get("start_date")
	endDateStr := query.Get("end_date")

	var startDate, endDate time.Time
	var err error

	if startDateStr != "" {
		startDate, err = time.Parse("2006-01-02", startDateStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
			return
		}
	} else {
		startDate = time.Now().AddDate(-1, 0, 0) // 1 year ago
	}

	if endDateStr != "" {
		endDate, err = time.Parse("2006-01-02", endDateStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
			return
		}
	} else {
		endDate = time.Now()
	}

	transactions, err := h.store.ListTransactions(ctx, startDate, endDate)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}

	// Return array directly for frontend compatibility
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// CreateTransaction handles POST /api/transactions
func (h *LedgerHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ledger.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Description == "" || req.Amount == "" || req.Date == "" {
		middleware.WriteError(w, http.StatusBadRequest, "description, amount and date are required")
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid date format, want YYYY-MM-DD")
		return
	}

	if req.Category == "" {
		req.Category = ledger.DefaultCategory
	}
	if req.Type == "" {
		req.Type = ledger.DefaultType
	}
	if req.Icon == "" {
		req.Icon = ledger.DefaultIcon
	}
	if req.AccountID == "" {
		req.AccountID = h.defaultAccountID
	}

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

	if err := h.store.InsertTransaction(ctx, tx); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to insert transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// ListAccounts handles GET /api/accounts
func (h *LedgerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accounts, err := h.store.ListAccounts(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list accounts")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}
