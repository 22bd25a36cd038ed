package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION - A single money movement
// =============================================================================

// Transaction records one money movement. The stored amount is ALWAYS
// positive; the sign of its effect on a balance is derived from the
// transaction kind and the account kind (see impact.go).
//
// INVARIANTS:
//   - Transfer transactions carry a DestinationAccountID.
//   - InvoiceID is set at creation time when the owning account is a credit
//     card, and is never moved once the invoice has closed.
type Transaction struct {
	ID         TransactionID
	UserID     UserID
	AccountID  AccountID
	CategoryID string
	Kind       TransactionKind
	Amount     decimal.Decimal // signed-magnitude: always >= 0
	Date       Date
	Description string
	Tags        []string

	// Transfer only.
	DestinationAccountID AccountID

	// Set only when the owning account is a credit card.
	InvoiceID InvoiceID

	Status    TransactionStatus
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTransfer reports whether the transaction moves money between accounts.
func (t *Transaction) IsTransfer() bool { return t.Kind == TxTransfer }

// CountsTowardInvoice reports whether the transaction contributes to its
// invoice total: live expense rows tagged to an invoice.
func (t *Transaction) CountsTowardInvoice(invoiceID InvoiceID) bool {
	return !t.Deleted && t.Kind == TxExpense && t.InvoiceID == invoiceID
}
