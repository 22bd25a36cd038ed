/*
Package sqlite provides the SQLite-backed implementation of the ledger stores.

PURPOSE:
  Implements AccountStore, TransactionStore, and InvoiceStore on SQLite.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  accounts:     Balances, billing parameters, open-invoice pointer
  transactions: Money movements with their invoice tag
  invoices:     One row per billing cycle

INDEXES:
  - idx_invoices_account_month (UNIQUE): one invoice per (account, month)
  - idx_invoices_account_status: open-invoice lookup (hot path)
  - idx_transactions_invoice: invoice total recalculation
  - idx_invoices_user_due: closed-unpaid and overdue queries

OPTIMISTIC CONCURRENCY:
  Account updates are guarded by a revision column:
      UPDATE ... WHERE id = ? AND revision = ?
  Zero rows affected on an existing account means another writer got there
  first, reported as ErrConcurrentModification.

WAL MODE:
  The database is opened with WAL for better concurrency: readers do not
  block, single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/money.db")   // or ":memory:"
  defer store.Close()

SEE ALSO:
  - ledger/store.go: interface definitions
  - ledger/store/memory.go: in-memory implementation for unit tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lgfauth/money-manager/ledger"
)

// Store implements all ledger storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Accounts
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		balance TEXT NOT NULL,
		initial_balance TEXT NOT NULL,
		credit_limit TEXT NOT NULL DEFAULT '0',
		closing_day INTEGER NOT NULL DEFAULT 0,
		due_day_offset INTEGER NOT NULL DEFAULT 0,
		last_closed_at TEXT,
		current_open_invoice_id TEXT,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		revision INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_user
		ON accounts(user_id) WHERE deleted = FALSE;
	CREATE INDEX IF NOT EXISTS idx_accounts_kind
		ON accounts(kind);

	-- Transactions
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		category_id TEXT,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		tx_date TEXT NOT NULL,
		description TEXT,
		tags_json TEXT,
		destination_account_id TEXT,
		invoice_id TEXT,
		status TEXT NOT NULL,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_account
		ON transactions(user_id, account_id, tx_date);
	-- Invoice total recalculation (hot path)
	CREATE INDEX IF NOT EXISTS idx_transactions_invoice
		ON transactions(invoice_id) WHERE invoice_id IS NOT NULL;

	-- Invoices
	CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		due_date TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		paid_amount TEXT NOT NULL,
		remaining_amount TEXT NOT NULL,
		status TEXT NOT NULL,
		closed_at TEXT,
		paid_at TEXT,
		reference_month TEXT NOT NULL,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: exactly one invoice per (account, reference month)
	CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_account_month
		ON invoices(account_id, reference_month);
	CREATE INDEX IF NOT EXISTS idx_invoices_account_status
		ON invoices(account_id, status) WHERE deleted = FALSE;
	CREATE INDEX IF NOT EXISTS idx_invoices_user_due
		ON invoices(user_id, status, due_date) WHERE deleted = FALSE;
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ACCOUNT STORE
// =============================================================================

func (s *Store) GetAccount(ctx context.Context, id ledger.AccountID) (*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, accountSelect+" WHERE id = ?", id)
	acc, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return acc, err
}

func (s *Store) AddAccount(ctx context.Context, acc *ledger.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts
		(id, user_id, name, kind, balance, initial_balance, credit_limit,
		 closing_day, due_day_offset, last_closed_at, current_open_invoice_id,
		 deleted, revision, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		acc.ID, acc.UserID, acc.Name, acc.Kind,
		acc.Balance.String(), acc.InitialBalance.String(), acc.CreditLimit.String(),
		acc.ClosingDay, acc.DueDayOffset,
		nullTime(acc.LastClosedAt), nullString(string(acc.CurrentOpenInvoiceID)),
		acc.Deleted, acc.Revision,
		acc.CreatedAt.UTC().Format(time.RFC3339), acc.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// UpdateAccount persists changes with the optimistic revision check.
func (s *Store) UpdateAccount(ctx context.Context, acc *ledger.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET
			name = ?, kind = ?, balance = ?, initial_balance = ?, credit_limit = ?,
			closing_day = ?, due_day_offset = ?, last_closed_at = ?,
			current_open_invoice_id = ?, deleted = ?, revision = revision + 1,
			updated_at = ?
		WHERE id = ? AND revision = ?
	`,
		acc.Name, acc.Kind, acc.Balance.String(), acc.InitialBalance.String(), acc.CreditLimit.String(),
		acc.ClosingDay, acc.DueDayOffset, nullTime(acc.LastClosedAt),
		nullString(string(acc.CurrentOpenInvoiceID)), acc.Deleted,
		acc.UpdatedAt.UTC().Format(time.RFC3339),
		acc.ID, acc.Revision,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts WHERE id = ?", acc.ID).Scan(&exists); err != nil {
			return err
		}
		if exists > 0 {
			return ledger.ErrConcurrentModification
		}
		return ledger.ErrAccountNotFound
	}

	acc.Revision++
	return nil
}

func (s *Store) GetAllAccounts(ctx context.Context) ([]*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryAccounts(ctx, accountSelect+" ORDER BY created_at ASC")
}

func (s *Store) ListAccountsByUser(ctx context.Context, userID ledger.UserID) ([]*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryAccounts(ctx,
		accountSelect+" WHERE user_id = ? AND deleted = FALSE ORDER BY created_at ASC",
		userID)
}

const accountSelect = `
	SELECT id, user_id, name, kind, balance, initial_balance, credit_limit,
	       closing_day, due_day_offset, last_closed_at, current_open_invoice_id,
	       deleted, revision, created_at, updated_at
	FROM accounts`

func (s *Store) queryAccounts(ctx context.Context, query string, args ...any) ([]*ledger.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var out []*ledger.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*ledger.Account, error) {
	var (
		acc                     ledger.Account
		balance, initial, limit string
		lastClosed, openInvoice sql.NullString
		createdAt, updatedAt    string
	)
	err := row.Scan(
		&acc.ID, &acc.UserID, &acc.Name, &acc.Kind, &balance, &initial, &limit,
		&acc.ClosingDay, &acc.DueDayOffset, &lastClosed, &openInvoice,
		&acc.Deleted, &acc.Revision, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	acc.Balance = ledger.MustMoney(balance)
	acc.InitialBalance = ledger.MustMoney(initial)
	acc.CreditLimit = ledger.MustMoney(limit)
	acc.LastClosedAt = parseNullTime(lastClosed)
	acc.CurrentOpenInvoiceID = ledger.InvoiceID(openInvoice.String)
	acc.CreatedAt = parseTime(createdAt)
	acc.UpdatedAt = parseTime(updatedAt)
	return &acc, nil
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

func (s *Store) GetTransaction(ctx context.Context, id ledger.TransactionID) (*ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, transactionSelect+" WHERE id = ?", id)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return tx, err
}

func (s *Store) AddTransaction(ctx context.Context, tx *ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tagsJSON, _ := json.Marshal(tx.Tags)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions
		(id, user_id, account_id, category_id, kind, amount, tx_date, description,
		 tags_json, destination_account_id, invoice_id, status, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tx.ID, tx.UserID, tx.AccountID, nullString(tx.CategoryID), tx.Kind,
		tx.Amount.String(), tx.Date.String(), tx.Description,
		string(tagsJSON), nullString(string(tx.DestinationAccountID)),
		nullString(string(tx.InvoiceID)), tx.Status, tx.Deleted,
		tx.CreatedAt.UTC().Format(time.RFC3339), tx.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tagsJSON, _ := json.Marshal(tx.Tags)
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET
			account_id = ?, category_id = ?, kind = ?, amount = ?, tx_date = ?,
			description = ?, tags_json = ?, destination_account_id = ?,
			invoice_id = ?, status = ?, deleted = ?, updated_at = ?
		WHERE id = ?
	`,
		tx.AccountID, nullString(tx.CategoryID), tx.Kind, tx.Amount.String(), tx.Date.String(),
		tx.Description, string(tagsJSON), nullString(string(tx.DestinationAccountID)),
		nullString(string(tx.InvoiceID)), tx.Status, tx.Deleted,
		tx.UpdatedAt.UTC().Format(time.RFC3339),
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ledger.ErrTransactionNotFound
	}
	return nil
}

func (s *Store) GetAllTransactions(ctx context.Context) ([]*ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransactions(ctx, transactionSelect+" ORDER BY tx_date ASC, created_at ASC")
}

func (s *Store) ListTransactionsByAccount(ctx context.Context, userID ledger.UserID, accountID ledger.AccountID) ([]*ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransactions(ctx,
		transactionSelect+` WHERE user_id = ? AND account_id = ? AND deleted = FALSE
		ORDER BY tx_date ASC, created_at ASC`,
		userID, accountID)
}

const transactionSelect = `
	SELECT id, user_id, account_id, category_id, kind, amount, tx_date, description,
	       tags_json, destination_account_id, invoice_id, status, deleted, created_at, updated_at
	FROM transactions`

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]*ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []*ledger.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func scanTransaction(row rowScanner) (*ledger.Transaction, error) {
	var (
		tx                      ledger.Transaction
		category, dest, invoice sql.NullString
		description, tagsJSON   sql.NullString
		amount, txDate          string
		createdAt, updatedAt    string
	)
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.AccountID, &category, &tx.Kind, &amount, &txDate,
		&description, &tagsJSON, &dest, &invoice, &tx.Status, &tx.Deleted,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.CategoryID = category.String
	tx.Amount = ledger.MustMoney(amount)
	if d, err := ledger.ParseDate(txDate); err == nil {
		tx.Date = d
	}
	tx.Description = description.String
	if tagsJSON.Valid && tagsJSON.String != "" {
		json.Unmarshal([]byte(tagsJSON.String), &tx.Tags)
	}
	tx.DestinationAccountID = ledger.AccountID(dest.String)
	tx.InvoiceID = ledger.InvoiceID(invoice.String)
	tx.CreatedAt = parseTime(createdAt)
	tx.UpdatedAt = parseTime(updatedAt)
	return &tx, nil
}

// =============================================================================
// INVOICE STORE
// =============================================================================

func (s *Store) GetInvoice(ctx context.Context, id ledger.InvoiceID) (*ledger.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, invoiceSelect+" WHERE id = ?", id)
	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func (s *Store) AddInvoice(ctx context.Context, inv *ledger.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices
		(id, account_id, user_id, period_start, period_end, due_date,
		 total_amount, paid_amount, remaining_amount, status, closed_at, paid_at,
		 reference_month, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		inv.ID, inv.AccountID, inv.UserID,
		inv.PeriodStart.String(), inv.PeriodEnd.String(), inv.DueDate.String(),
		inv.TotalAmount.String(), inv.PaidAmount.String(), inv.RemainingAmount.String(),
		inv.Status, nullTime(inv.ClosedAt), nullTime(inv.PaidAt),
		inv.ReferenceMonth, inv.Deleted,
		inv.CreatedAt.UTC().Format(time.RFC3339), inv.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *ledger.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE invoices SET
			period_start = ?, period_end = ?, due_date = ?,
			total_amount = ?, paid_amount = ?, remaining_amount = ?,
			status = ?, closed_at = ?, paid_at = ?, deleted = ?, updated_at = ?
		WHERE id = ?
	`,
		inv.PeriodStart.String(), inv.PeriodEnd.String(), inv.DueDate.String(),
		inv.TotalAmount.String(), inv.PaidAmount.String(), inv.RemainingAmount.String(),
		inv.Status, nullTime(inv.ClosedAt), nullTime(inv.PaidAt), inv.Deleted,
		inv.UpdatedAt.UTC().Format(time.RFC3339),
		inv.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ledger.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) GetInvoiceByReferenceMonth(ctx context.Context, accountID ledger.AccountID, month string) (*ledger.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		invoiceSelect+" WHERE account_id = ? AND reference_month = ? AND deleted = FALSE",
		accountID, month)
	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func (s *Store) GetOpenInvoiceByAccount(ctx context.Context, accountID ledger.AccountID) (*ledger.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		invoiceSelect+" WHERE account_id = ? AND status = ? AND deleted = FALSE",
		accountID, ledger.InvoiceOpen)
	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func (s *Store) GetClosedUnpaidInvoices(ctx context.Context, userID ledger.UserID) ([]*ledger.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryInvoices(ctx,
		invoiceSelect+` WHERE user_id = ? AND status IN (?, ?) AND deleted = FALSE
		ORDER BY due_date ASC`,
		userID, ledger.InvoiceClosed, ledger.InvoicePartiallyPaid)
}

// GetOverdueInvoices uses the SQL equivalent of Invoice.IsOverdue:
// not paid, due strictly before today.
func (s *Store) GetOverdueInvoices(ctx context.Context, userID ledger.UserID, today ledger.Date) ([]*ledger.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryInvoices(ctx,
		invoiceSelect+` WHERE user_id = ? AND status != ? AND due_date < ? AND deleted = FALSE
		ORDER BY due_date ASC`,
		userID, ledger.InvoicePaid, today.String())
}

const invoiceSelect = `
	SELECT id, account_id, user_id, period_start, period_end, due_date,
	       total_amount, paid_amount, remaining_amount, status, closed_at, paid_at,
	       reference_month, deleted, created_at, updated_at
	FROM invoices`

func (s *Store) queryInvoices(ctx context.Context, query string, args ...any) ([]*ledger.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var out []*ledger.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanInvoice(row rowScanner) (*ledger.Invoice, error) {
	var (
		inv                    ledger.Invoice
		start, end, due        string
		total, paid, remaining string
		closedAt, paidAt       sql.NullString
		createdAt, updatedAt   string
	)
	err := row.Scan(
		&inv.ID, &inv.AccountID, &inv.UserID, &start, &end, &due,
		&total, &paid, &remaining, &inv.Status, &closedAt, &paidAt,
		&inv.ReferenceMonth, &inv.Deleted, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.PeriodStart, _ = ledger.ParseDate(start)
	inv.PeriodEnd, _ = ledger.ParseDate(end)
	inv.DueDate, _ = ledger.ParseDate(due)
	inv.TotalAmount = ledger.MustMoney(total)
	inv.PaidAmount = ledger.MustMoney(paid)
	inv.RemainingAmount = ledger.MustMoney(remaining)
	inv.ClosedAt = parseNullTime(closedAt)
	inv.PaidAt = parseNullTime(paidAt)
	inv.CreatedAt = parseTime(createdAt)
	inv.UpdatedAt = parseTime(updatedAt)
	return &inv, nil
}

// =============================================================================
// INTERFACE ADAPTERS
// =============================================================================
// One Store backs all three repository interfaces; the adapters map the
// interface method names onto the entity-specific methods above.

// Accounts exposes the store as a ledger.AccountStore.
func (s *Store) Accounts() ledger.AccountStore { return accountAdapter{s} }

// Transactions exposes the store as a ledger.TransactionStore.
func (s *Store) Transactions() ledger.TransactionStore { return txAdapter{s} }

// Invoices exposes the store as a ledger.InvoiceStore.
func (s *Store) Invoices() ledger.InvoiceStore { return invoiceAdapter{s} }

type accountAdapter struct{ s *Store }

func (a accountAdapter) GetByID(ctx context.Context, id ledger.AccountID) (*ledger.Account, error) {
	return a.s.GetAccount(ctx, id)
}
func (a accountAdapter) Add(ctx context.Context, acc *ledger.Account) error {
	return a.s.AddAccount(ctx, acc)
}
func (a accountAdapter) Update(ctx context.Context, acc *ledger.Account) error {
	return a.s.UpdateAccount(ctx, acc)
}
func (a accountAdapter) GetAll(ctx context.Context) ([]*ledger.Account, error) {
	return a.s.GetAllAccounts(ctx)
}
func (a accountAdapter) ListByUser(ctx context.Context, userID ledger.UserID) ([]*ledger.Account, error) {
	return a.s.ListAccountsByUser(ctx, userID)
}

type txAdapter struct{ s *Store }

func (a txAdapter) GetByID(ctx context.Context, id ledger.TransactionID) (*ledger.Transaction, error) {
	return a.s.GetTransaction(ctx, id)
}
func (a txAdapter) Add(ctx context.Context, tx *ledger.Transaction) error {
	return a.s.AddTransaction(ctx, tx)
}
func (a txAdapter) Update(ctx context.Context, tx *ledger.Transaction) error {
	return a.s.UpdateTransaction(ctx, tx)
}
func (a txAdapter) GetAll(ctx context.Context) ([]*ledger.Transaction, error) {
	return a.s.GetAllTransactions(ctx)
}
func (a txAdapter) ListByAccount(ctx context.Context, userID ledger.UserID, accountID ledger.AccountID) ([]*ledger.Transaction, error) {
	return a.s.ListTransactionsByAccount(ctx, userID, accountID)
}

type invoiceAdapter struct{ s *Store }

func (a invoiceAdapter) GetByID(ctx context.Context, id ledger.InvoiceID) (*ledger.Invoice, error) {
	return a.s.GetInvoice(ctx, id)
}
func (a invoiceAdapter) Add(ctx context.Context, inv *ledger.Invoice) error {
	return a.s.AddInvoice(ctx, inv)
}
func (a invoiceAdapter) Update(ctx context.Context, inv *ledger.Invoice) error {
	return a.s.UpdateInvoice(ctx, inv)
}
func (a invoiceAdapter) GetByReferenceMonth(ctx context.Context, accountID ledger.AccountID, month string) (*ledger.Invoice, error) {
	return a.s.GetInvoiceByReferenceMonth(ctx, accountID, month)
}
func (a invoiceAdapter) GetOpenByAccountID(ctx context.Context, accountID ledger.AccountID) (*ledger.Invoice, error) {
	return a.s.GetOpenInvoiceByAccount(ctx, accountID)
}
func (a invoiceAdapter) GetClosedUnpaid(ctx context.Context, userID ledger.UserID) ([]*ledger.Invoice, error) {
	return a.s.GetClosedUnpaidInvoices(ctx, userID)
}
func (a invoiceAdapter) GetOverdue(ctx context.Context, userID ledger.UserID, today ledger.Date) ([]*ledger.Invoice, error) {
	return a.s.GetOverdueInvoices(ctx, userID, today)
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseNullTime(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}
	return parseTime(ns.String)
}
