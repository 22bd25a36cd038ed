/*
handlers.go - HTTP API handlers for the money manager

PURPOSE:
  Exposes the ledger and invoice engines via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Accounts:
    GET    /api/accounts                      List the user's accounts
    POST   /api/accounts                      Create account
    GET    /api/accounts/{id}                 Get account details
    GET    /api/accounts/{id}/transactions    Transaction history
    GET    /api/accounts/{id}/open-invoice    Current open invoice (creates if absent)
    POST   /api/accounts/{id}/history-invoice One-shot HISTORY migration bucket

  Transactions:
    POST   /api/transactions                  Record a transaction
    PUT    /api/transactions/{id}             Edit (revert old impact, apply new)
    DELETE /api/transactions/{id}             Soft-delete and revert impact

  Invoices:
    GET    /api/invoices/resolve              Bucket for (account_id, date)
    GET    /api/invoices/closed-unpaid        Closed + PartiallyPaid invoices
    GET    /api/invoices/overdue              Unpaid past due date
    GET    /api/invoices/{id}                 Get invoice
    POST   /api/invoices/{id}/close           Close and open the next cycle
    POST   /api/invoices/{id}/pay             Full payment (exact amount)
    POST   /api/invoices/{id}/pay-partial     Partial payment
    POST   /api/invoices/{id}/recalculate     Re-derive the total

  Admin:
    POST   /api/admin/run-closures            Run the scheduled-closure batch now

IDENTITY:
  The requesting user comes from the X-User-ID header. There is no
  authentication; the header is trusted as-is. Ownership checks below the
  handlers report foreign entities as not found, never as forbidden.

ERROR HANDLING:
  The ledger error taxonomy maps mechanically to HTTP status:
  - IsNotFound            -> 404
  - IsInvalidOperation    -> 409
  - malformed input       -> 400
  - everything else       -> 500

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - ledger/errors.go: the taxonomy being mapped
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lgfauth/money-manager/invoice"
	"github.com/lgfauth/money-manager/ledger"
)

// userHeader carries the requesting user's identity.
const userHeader = "X-User-ID"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Accounts     ledger.AccountStore
	Transactions ledger.TransactionStore
	Invoices     ledger.InvoiceStore
	Ledger       *ledger.AccountLedger
	Engine       *ledger.ImpactEngine
	Manager      *invoice.Manager
	Clock        ledger.Clock
}

// NewHandler wires the domain services over the given stores.
func NewHandler(accounts ledger.AccountStore, transactions ledger.TransactionStore, invoices ledger.InvoiceStore, clock ledger.Clock) *Handler {
	if clock == nil {
		clock = ledger.SystemClock{}
	}
	acctLedger := ledger.NewAccountLedger(accounts, clock)
	manager := invoice.NewManager(accounts, invoices, transactions, clock)
	return &Handler{
		Accounts:     accounts,
		Transactions: transactions,
		Invoices:     invoices,
		Ledger:       acctLedger,
		Engine:       ledger.NewImpactEngine(acctLedger, manager),
		Manager:      manager,
		Clock:        clock,
	}
}

// userID extracts the requesting user from the header, writing a 400 and
// returning false when it is missing.
func userID(w http.ResponseWriter, r *http.Request) (ledger.UserID, bool) {
	id := r.Header.Get(userHeader)
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing "+userHeader+" header", nil)
		return "", false
	}
	return ledger.UserID(id), true
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns the user's live accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	accounts, err := h.Accounts.ListByUser(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}
	dtos := make([]AccountDTO, len(accounts))
	for i, acc := range accounts {
		dtos[i] = toAccountDTO(acc)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAccount returns a single account.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	acc, err := h.Ledger.Get(r.Context(), uid, ledger.AccountID(chi.URLParam(r, "id")))
	if err != nil {
		respondDomainError(w, err, "Failed to get account")
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(acc))
}

// CreateAccount creates a new account. Credit cards get their open invoice
// lazily on first use, not here.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	kind := ledger.AccountKind(req.Kind)
	if !ledger.ValidAccountKind(kind) {
		writeError(w, http.StatusBadRequest, "Invalid account kind", nil)
		return
	}

	initial := decimal.Zero
	if req.InitialBalance != "" {
		var err error
		initial, err = decimal.NewFromString(req.InitialBalance)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid initial_balance", err)
			return
		}
	}
	limit := decimal.Zero
	if req.CreditLimit != "" {
		var err error
		limit, err = decimal.NewFromString(req.CreditLimit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid credit_limit", err)
			return
		}
	}
	if kind == ledger.KindCreditCard && (req.ClosingDay < 1 || req.ClosingDay > 31) {
		writeError(w, http.StatusBadRequest, "closing_day must be between 1 and 31", nil)
		return
	}

	now := h.Clock.Now()
	acc := &ledger.Account{
		ID:             ledger.AccountID(uuid.NewString()),
		UserID:         uid,
		Name:           req.Name,
		Kind:           kind,
		Balance:        initial,
		InitialBalance: initial,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if kind == ledger.KindCreditCard {
		acc.CreditLimit = limit
		acc.ClosingDay = req.ClosingDay
		acc.DueDayOffset = req.DueDayOffset
	}

	if err := h.Accounts.Add(r.Context(), acc); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(acc))
}

// ListAccountTransactions returns the account's live transactions.
func (h *Handler) ListAccountTransactions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	accID := ledger.AccountID(chi.URLParam(r, "id"))
	if _, err := h.Ledger.Get(r.Context(), uid, accID); err != nil {
		respondDomainError(w, err, "Failed to get account")
		return
	}
	txs, err := h.Transactions.ListByAccount(r.Context(), uid, accID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetOpenInvoice returns the card's current open invoice, creating it when
// none exists.
func (h *Handler) GetOpenInvoice(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	inv, err := h.Manager.OpenInvoice(r.Context(), uid, ledger.AccountID(chi.URLParam(r, "id")))
	if err != nil {
		respondDomainError(w, err, "Failed to get open invoice")
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv, h.Clock.Today()))
}

// CreateHistoryInvoice creates the pre-paid HISTORY bucket and tags the
// account's past untagged transactions to it.
func (h *Handler) CreateHistoryInvoice(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	inv, err := h.Manager.CreateHistoryInvoice(r.Context(), uid, ledger.AccountID(chi.URLParam(r, "id")))
	if err != nil {
		respondDomainError(w, err, "Failed to create history invoice")
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceDTO(inv, h.Clock.Today()))
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// CreateTransaction records a transaction and applies its balance impact.
// Credit-card expenses get tagged with their invoice bucket by the engine.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tx, ok := h.transactionFromRequest(w, uid, req)
	if !ok {
		return
	}

	if err := h.Engine.Apply(r.Context(), uid, tx); err != nil {
		respondDomainError(w, err, "Failed to apply transaction")
		return
	}
	if err := h.Transactions.Add(r.Context(), tx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// UpdateTransaction replaces a transaction's values. The original's balance
// impact is reverted, then the new values are applied; the two steps are
// independent persistence calls.
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tx, err := h.getTransaction(r.Context(), uid, ledger.TransactionID(chi.URLParam(r, "id")))
	if err != nil {
		respondDomainError(w, err, "Failed to get transaction")
		return
	}

	kind := tx.Kind
	if req.Kind != "" {
		kind = ledger.TransactionKind(req.Kind)
		if !ledger.ValidTransactionKind(kind) {
			writeError(w, http.StatusBadRequest, "Invalid transaction kind", nil)
			return
		}
	}
	amount := tx.Amount
	if req.Amount != "" {
		amount, err = decimal.NewFromString(req.Amount)
		if err != nil || amount.LessThanOrEqual(decimal.Zero) {
			writeError(w, http.StatusBadRequest, "Amount must be a positive decimal", err)
			return
		}
	}
	date := tx.Date
	if req.Date != "" {
		date, err = ledger.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
	}

	if err := h.Engine.Revert(r.Context(), uid, tx); err != nil {
		respondDomainError(w, err, "Failed to revert transaction")
		return
	}

	tx.Kind = kind
	tx.Amount = amount
	tx.Date = date
	if req.CategoryID != "" {
		tx.CategoryID = req.CategoryID
	}
	if req.Description != "" {
		tx.Description = req.Description
	}
	if req.Tags != nil {
		tx.Tags = req.Tags
	}
	// A tag to a still-open bucket is recomputed from the new date; once
	// the bucket has closed the transaction stays where it was billed.
	if tx.InvoiceID != "" {
		inv, err := h.Invoices.GetByID(r.Context(), tx.InvoiceID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load invoice", err)
			return
		}
		if inv != nil && inv.Status == ledger.InvoiceOpen {
			tx.InvoiceID = ""
		}
	}
	tx.UpdatedAt = h.Clock.Now()

	if err := h.Engine.Apply(r.Context(), uid, tx); err != nil {
		respondDomainError(w, err, "Failed to apply transaction")
		return
	}
	if err := h.Transactions.Update(r.Context(), tx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

// DeleteTransaction soft-deletes a transaction and reverts its balance
// impact. The row survives for audit; invoice recalculation skips it.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	tx, err := h.getTransaction(r.Context(), uid, ledger.TransactionID(chi.URLParam(r, "id")))
	if err != nil {
		respondDomainError(w, err, "Failed to get transaction")
		return
	}

	if err := h.Engine.Revert(r.Context(), uid, tx); err != nil {
		respondDomainError(w, err, "Failed to revert transaction")
		return
	}
	tx.Deleted = true
	tx.Status = ledger.TxStatusCanceled
	tx.UpdatedAt = h.Clock.Now()
	if err := h.Transactions.Update(r.Context(), tx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// GetInvoice returns a single invoice.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	inv, err := h.Manager.Get(r.Context(), uid, ledger.InvoiceID(chi.URLParam(r, "id")))
	if err != nil {
		respondDomainError(w, err, "Failed to get invoice")
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv, h.Clock.Today()))
}

// ResolveInvoice returns the billing bucket for (account_id, date), creating
// it when absent. GET /api/invoices/resolve?account_id=...&date=YYYY-MM-DD
func (h *Handler) ResolveInvoice(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	accID := ledger.AccountID(r.URL.Query().Get("account_id"))
	if accID == "" {
		writeError(w, http.StatusBadRequest, "account_id query parameter is required", nil)
		return
	}
	date := h.Clock.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		var err error
		date, err = ledger.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
	}
	inv, err := h.Manager.InvoiceForDate(r.Context(), uid, accID, date)
	if err != nil {
		respondDomainError(w, err, "Failed to resolve invoice")
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv, h.Clock.Today()))
}

// CloseInvoice closes an Open invoice and opens the next cycle.
func (h *Handler) CloseInvoice(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	inv, err := h.Manager.Close(r.Context(), uid, ledger.InvoiceID(chi.URLParam(r, "id")))
	if err != nil {
		respondDomainError(w, err, "Failed to close invoice")
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv, h.Clock.Today()))
}

// PayInvoice settles an invoice in full.
func (h *Handler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	h.payInvoice(w, r, false)
}

// PayPartialInvoice applies a partial payment.
func (h *Handler) PayPartialInvoice(w http.ResponseWriter, r *http.Request) {
	h.payInvoice(w, r, true)
}

func (h *Handler) payInvoice(w http.ResponseWriter, r *http.Request, partial bool) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var body PayInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	if body.FromAccountID == "" {
		writeError(w, http.StatusBadRequest, "from_account_id is required", nil)
		return
	}

	req := invoice.PayRequest{
		InvoiceID:     ledger.InvoiceID(chi.URLParam(r, "id")),
		Amount:        amount,
		FromAccountID: ledger.AccountID(body.FromAccountID),
	}
	if body.Date != "" {
		d, err := ledger.ParseDate(body.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		req.Date = d.Time
	}

	var inv *ledger.Invoice
	if partial {
		inv, err = h.Manager.PayPartial(r.Context(), uid, req)
	} else {
		inv, err = h.Manager.Pay(r.Context(), uid, req)
	}
	if err != nil {
		respondDomainError(w, err, "Failed to pay invoice")
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv, h.Clock.Today()))
}

// RecalculateInvoice re-derives the invoice total from its transactions.
func (h *Handler) RecalculateInvoice(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	inv, err := h.Manager.Recalculate(r.Context(), uid, ledger.InvoiceID(chi.URLParam(r, "id")))
	if err != nil {
		respondDomainError(w, err, "Failed to recalculate invoice")
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv, h.Clock.Today()))
}

// ListClosedUnpaid returns the user's Closed and PartiallyPaid invoices.
func (h *Handler) ListClosedUnpaid(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	invs, err := h.Manager.ListClosedUnpaid(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list invoices", err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTOs(invs, h.Clock.Today()))
}

// ListOverdue returns the user's unpaid invoices past their due date.
func (h *Handler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	invs, err := h.Manager.ListOverdue(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list invoices", err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTOs(invs, h.Clock.Today()))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// RunClosures triggers the scheduled-closure batch immediately.
// POST /api/admin/run-closures
func (h *Handler) RunClosures(w http.ResponseWriter, r *http.Request) {
	processed, skipped, err := h.Manager.ProcessScheduledClosures(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Closure run failed", err)
		return
	}
	writeJSON(w, http.StatusOK, ClosureRunDTO{Processed: processed, Skipped: skipped})
}

// =============================================================================
// HELPERS
// =============================================================================

// transactionFromRequest validates and builds a new transaction. Writes the
// 400 itself and returns ok=false on invalid input.
func (h *Handler) transactionFromRequest(w http.ResponseWriter, uid ledger.UserID, req CreateTransactionRequest) (*ledger.Transaction, bool) {
	kind := ledger.TransactionKind(req.Kind)
	if !ledger.ValidTransactionKind(kind) {
		writeError(w, http.StatusBadRequest, "Invalid transaction kind", nil)
		return nil, false
	}
	if req.AccountID == "" {
		writeError(w, http.StatusBadRequest, "account_id is required", nil)
		return nil, false
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		writeError(w, http.StatusBadRequest, "Amount must be a positive decimal", err)
		return nil, false
	}
	date := h.Clock.Today()
	if req.Date != "" {
		date, err = ledger.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return nil, false
		}
	}
	if kind == ledger.TxTransfer && req.DestinationAccountID == "" {
		writeError(w, http.StatusBadRequest, "Transfers require destination_account_id", nil)
		return nil, false
	}

	now := h.Clock.Now()
	return &ledger.Transaction{
		ID:                   ledger.TransactionID(uuid.NewString()),
		UserID:               uid,
		AccountID:            ledger.AccountID(req.AccountID),
		CategoryID:           req.CategoryID,
		Kind:                 kind,
		Amount:               amount,
		Date:                 date,
		Description:          req.Description,
		Tags:                 req.Tags,
		DestinationAccountID: ledger.AccountID(req.DestinationAccountID),
		Status:               ledger.TxStatusCompleted,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, true
}

// getTransaction loads a live transaction owned by the user.
func (h *Handler) getTransaction(ctx context.Context, uid ledger.UserID, id ledger.TransactionID) (*ledger.Transaction, error) {
	tx, err := h.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil || tx.Deleted || tx.UserID != uid {
		return nil, ledger.ErrTransactionNotFound
	}
	return tx, nil
}

// respondDomainError maps the ledger error taxonomy to HTTP status codes.
func respondDomainError(w http.ResponseWriter, err error, message string) {
	switch {
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case ledger.IsInvalidOperation(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
