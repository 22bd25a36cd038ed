/*
account.go - Account entity and the balance primitive surface

PURPOSE:
  An Account is a user-owned money container. For credit cards the stored
  balance represents OUTSTANDING DEBT, and the account additionally carries
  its billing parameters (closing day, due offset) and a weak reference to
  the currently open invoice.

BALANCE MUTATION:
  Balance is only ever mutated through AccountLedger.AdjustBalance. There is
  no transaction boundary spanning multiple accounts; each adjustment is its
  own persistence operation. A per-account revision counter turns the
  classic read-modify-write lost update into ErrConcurrentModification,
  which AdjustBalance retries a bounded number of times.

SEE ALSO:
  - impact.go: computes the signed deltas fed to AdjustBalance
  - invoice/lifecycle.go: uses SetCurrentOpenInvoice / MarkLastClosed
*/
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCOUNT ENTITY
// =============================================================================

type Account struct {
	ID             AccountID
	UserID         UserID
	Name           string
	Kind           AccountKind
	Balance        decimal.Decimal
	InitialBalance decimal.Decimal

	// Credit-card only. Zero values for every other kind.
	CreditLimit          decimal.Decimal
	ClosingDay           int // day-of-month 1-31, clamped per month
	DueDayOffset         int // days from closing to due date
	LastClosedAt         time.Time
	CurrentOpenInvoiceID InvoiceID

	Deleted   bool
	Revision  int64 // optimistic concurrency check on every update
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCreditCard reports whether invoice semantics apply to this account.
func (a *Account) IsCreditCard() bool { return a.Kind == KindCreditCard }

// ClosingDayOrDefault returns the configured closing day, defaulting to 1.
func (a *Account) ClosingDayOrDefault() int {
	if a.ClosingDay < 1 {
		return 1
	}
	return a.ClosingDay
}

// =============================================================================
// ACCOUNT LEDGER - Minimal primitive surface over the account store
// =============================================================================

// adjustRetries bounds the optimistic-concurrency retry loop.
const adjustRetries = 3

// AccountLedger wraps the account store with the primitives the impact
// engine and the invoice lifecycle need. Ownership is checked on every read:
// an account belonging to another user is reported as not found, never as
// forbidden.
type AccountLedger struct {
	accounts AccountStore
	clock    Clock
}

func NewAccountLedger(accounts AccountStore, clock Clock) *AccountLedger {
	if clock == nil {
		clock = SystemClock{}
	}
	return &AccountLedger{accounts: accounts, clock: clock}
}

// Get loads a live account owned by the user.
func (l *AccountLedger) Get(ctx context.Context, userID UserID, id AccountID) (*Account, error) {
	acc, err := l.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil || acc.Deleted || acc.UserID != userID {
		return nil, ErrAccountNotFound
	}
	return acc, nil
}

// AdjustBalance applies a signed delta to the account balance.
// Load, add, persist; retried on revision conflicts.
func (l *AccountLedger) AdjustBalance(ctx context.Context, userID UserID, id AccountID, delta decimal.Decimal) (*Account, error) {
	var lastErr error
	for attempt := 0; attempt < adjustRetries; attempt++ {
		acc, err := l.Get(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		acc.Balance = acc.Balance.Add(delta)
		acc.UpdatedAt = l.clock.Now()
		if err := l.accounts.Update(ctx, acc); err != nil {
			if IsRetryable(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return acc, nil
	}
	return nil, fmt.Errorf("adjust balance for account %s: %w", id, lastErr)
}

// SetCurrentOpenInvoice repoints the account at its open invoice.
func (l *AccountLedger) SetCurrentOpenInvoice(ctx context.Context, userID UserID, id AccountID, invoiceID InvoiceID) error {
	return l.mutate(ctx, userID, id, func(acc *Account) {
		acc.CurrentOpenInvoiceID = invoiceID
	})
}

// MarkLastClosed records when the account's invoice was last closed.
func (l *AccountLedger) MarkLastClosed(ctx context.Context, userID UserID, id AccountID, at time.Time) error {
	return l.mutate(ctx, userID, id, func(acc *Account) {
		acc.LastClosedAt = at
	})
}

func (l *AccountLedger) mutate(ctx context.Context, userID UserID, id AccountID, fn func(*Account)) error {
	var lastErr error
	for attempt := 0; attempt < adjustRetries; attempt++ {
		acc, err := l.Get(ctx, userID, id)
		if err != nil {
			return err
		}
		fn(acc)
		acc.UpdatedAt = l.clock.Now()
		if err := l.accounts.Update(ctx, acc); err != nil {
			if IsRetryable(err) {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("update account %s: %w", id, lastErr)
}
