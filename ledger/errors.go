/*
errors.go - Centralized error types for the money engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The taxonomy has three tiers, and callers (HTTP layer, scheduler) map
  them mechanically:

  1. Not-found errors    - missing, foreign-owned, or soft-deleted entities
  2. Invalid operations  - a business precondition is violated
  3. Everything else     - internal failures, surfaced as-is

USAGE:
  if ledger.IsNotFound(err) { ... 404 ... }
  if ledger.IsInvalidOperation(err) { ... 400 ... }

SEE ALSO:
  - invoice/lifecycle.go: produces most of the invalid-operation errors
  - api/handlers.go: maps the taxonomy to HTTP status codes
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAccountNotFound is returned when a referenced account does not
	// exist, is soft-deleted, or belongs to another user.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is the transaction equivalent of ErrAccountNotFound.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvoiceNotFound is the invoice equivalent of ErrAccountNotFound.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrNotCreditCard is returned when an invoice operation targets an
	// account that is not a credit card.
	ErrNotCreditCard = errors.New("account is not a credit card")

	// ErrInvoiceNotOpen is returned when closing an invoice that is not Open.
	ErrInvoiceNotOpen = errors.New("invoice is not open")

	// ErrInvoiceAlreadyPaid is returned when paying an invoice that is
	// already fully paid.
	ErrInvoiceAlreadyPaid = errors.New("invoice already paid")

	// ErrPaymentMismatch is returned when a payment amount violates the
	// full/partial payment rules.
	ErrPaymentMismatch = errors.New("payment amount mismatch")

	// ErrCreditCardSource is returned when an invoice payment names another
	// credit card as the paying account.
	ErrCreditCardSource = errors.New("a credit card cannot pay an invoice")

	// ErrMissingDestination is returned for a transfer with no destination
	// account.
	ErrMissingDestination = errors.New("transfer requires a destination account")

	// ErrHistoryInvoiceExists is returned when a HISTORY migration bucket
	// already exists for the account.
	ErrHistoryInvoiceExists = errors.New("history invoice already exists")

	// ErrConcurrentModification is returned when the optimistic revision
	// check detects a conflicting account write.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvoiceStateError reports an invoice in the wrong state for an operation.
type InvoiceStateError struct {
	InvoiceID InvoiceID
	Status    InvoiceStatus
	Operation string
}

func (e *InvoiceStateError) Error() string {
	return fmt.Sprintf("cannot %s invoice %s in status %q", e.Operation, e.InvoiceID, e.Status)
}

func (e *InvoiceStateError) Unwrap() error {
	if e.Status == InvoicePaid {
		return ErrInvoiceAlreadyPaid
	}
	return ErrInvoiceNotOpen
}

// PaymentMismatchError reports a rejected payment amount.
type PaymentMismatchError struct {
	InvoiceID InvoiceID
	Remaining decimal.Decimal
	Requested decimal.Decimal
	Partial   bool
}

func (e *PaymentMismatchError) Error() string {
	if e.Partial {
		return fmt.Sprintf("partial payment of %s rejected: must be > 0 and <= remaining %s",
			e.Requested, e.Remaining)
	}
	return fmt.Sprintf("full payment of %s rejected: remaining is %s", e.Requested, e.Remaining)
}

func (e *PaymentMismatchError) Unwrap() error { return ErrPaymentMismatch }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing entity.
// Never retried; the caller referenced something that does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrInvoiceNotFound)
}

// IsInvalidOperation reports whether the error is a violated precondition.
// The caller must correct the input before retrying.
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrNotCreditCard) ||
		errors.Is(err, ErrInvoiceNotOpen) ||
		errors.Is(err, ErrInvoiceAlreadyPaid) ||
		errors.Is(err, ErrPaymentMismatch) ||
		errors.Is(err, ErrCreditCardSource) ||
		errors.Is(err, ErrMissingDestination) ||
		errors.Is(err, ErrHistoryInvoiceExists)
}

// IsRetryable reports whether the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
