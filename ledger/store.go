/*
store.go - Persistence interfaces for accounts, transactions, and invoices

PURPOSE:
  Defines the repository boundary between the domain logic and the database.
  The interfaces are deliberately small document-store-style surfaces:
  get/add/update by id plus a handful of lookups. There is NO transaction
  boundary spanning entities - each Update/Add call is its own persistence
  operation, and multi-entity flows (close-and-reopen, transfers) are
  sequences of independent writes.

CONCURRENCY:
  AccountStore.Update performs an optimistic revision check: the write fails
  with ErrConcurrentModification when the stored revision no longer matches
  the one the caller read. Transactions and invoices are single-writer in
  practice and carry no revision.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production SQLite
  - ledger/store/memory.go:  in-memory for tests

SEE ALSO:
  - account.go: AccountLedger built on AccountStore
  - invoice/lifecycle.go: Manager built on all three stores
*/
package ledger

import "context"

// =============================================================================
// ACCOUNT STORE
// =============================================================================

type AccountStore interface {
	// GetByID returns the account or nil when absent. Soft-deleted rows ARE
	// returned; ownership and deletion filtering happen in the domain layer.
	GetByID(ctx context.Context, id AccountID) (*Account, error)

	// Add persists a new account.
	Add(ctx context.Context, acc *Account) error

	// Update persists changes. Fails with ErrConcurrentModification when the
	// account's revision has moved since it was read; on success the stored
	// revision (and acc.Revision) is incremented.
	Update(ctx context.Context, acc *Account) error

	// GetAll returns every account. Used by the closure scheduler to
	// enumerate credit cards, and filtered in memory.
	GetAll(ctx context.Context) ([]*Account, error)

	// ListByUser returns the user's live accounts.
	ListByUser(ctx context.Context, userID UserID) ([]*Account, error)
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

type TransactionStore interface {
	GetByID(ctx context.Context, id TransactionID) (*Transaction, error)
	Add(ctx context.Context, tx *Transaction) error
	Update(ctx context.Context, tx *Transaction) error

	// GetAll returns every transaction; the core filters in memory
	// (no query pushdown is assumed of the repository layer).
	GetAll(ctx context.Context) ([]*Transaction, error)

	// ListByAccount returns a user's live transactions for one account,
	// ordered by date. A convenience for the read paths only; the invoice
	// core aggregates over GetAll.
	ListByAccount(ctx context.Context, userID UserID, accountID AccountID) ([]*Transaction, error)
}

// =============================================================================
// INVOICE STORE
// =============================================================================

type InvoiceStore interface {
	GetByID(ctx context.Context, id InvoiceID) (*Invoice, error)
	Add(ctx context.Context, inv *Invoice) error
	Update(ctx context.Context, inv *Invoice) error

	// GetByReferenceMonth returns the invoice for (account, YYYY-MM), or nil.
	GetByReferenceMonth(ctx context.Context, accountID AccountID, month string) (*Invoice, error)

	// GetOpenByAccountID returns the account's Open invoice, or nil.
	GetOpenByAccountID(ctx context.Context, accountID AccountID) (*Invoice, error)

	// GetClosedUnpaid returns the user's closed-but-not-settled invoices
	// (Closed or PartiallyPaid).
	GetClosedUnpaid(ctx context.Context, userID UserID) ([]*Invoice, error)

	// GetOverdue returns the user's invoices that are overdue as of today:
	// status != Paid and due date strictly before today. Must match
	// Invoice.IsOverdue.
	GetOverdue(ctx context.Context, userID UserID, today Date) ([]*Invoice, error)
}
