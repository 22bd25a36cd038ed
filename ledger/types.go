/*
Package ledger provides the core money-movement engine.

PURPOSE:
  This package contains the domain types and algorithms shared by the whole
  application: accounts, transactions, the signed balance-impact rules, and
  the repository interfaces the rest of the system is built on. The invoice
  package layers the credit-card billing lifecycle on top of these types.

KEY CONCEPTS IN THIS FILE (types.go):
  - AccountKind: Checking/Savings/Cash/CreditCard/Investment
  - TransactionKind: Income/Expense/Transfer
  - InvoiceStatus: the four persisted billing-cycle states
  - Typed IDs: prevent mixing account/transaction/invoice identifiers

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere, never float64 money
  2. Type safety: strong ID types, closed enums for kinds and statuses
  3. Signed impact is DERIVED: transaction amounts are stored positive;
     the sign of their effect depends on transaction kind and account kind

SEE ALSO:
  - account.go: Account entity and balance primitives
  - impact.go: the sign rule and apply/revert engine
  - invoice.go: Invoice entity and status transitions
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type AccountID string
type TransactionID string
type InvoiceID string

// =============================================================================
// ACCOUNT KIND
// =============================================================================

type AccountKind string

const (
	KindChecking   AccountKind = "checking"
	KindSavings    AccountKind = "savings"
	KindCash       AccountKind = "cash"
	KindCreditCard AccountKind = "credit_card"
	KindInvestment AccountKind = "investment"
)

// ValidAccountKind reports whether k is one of the closed set of kinds.
func ValidAccountKind(k AccountKind) bool {
	switch k {
	case KindChecking, KindSavings, KindCash, KindCreditCard, KindInvestment:
		return true
	}
	return false
}

// =============================================================================
// TRANSACTION KIND AND STATUS
// =============================================================================

type TransactionKind string

const (
	TxIncome   TransactionKind = "income"
	TxExpense  TransactionKind = "expense"
	TxTransfer TransactionKind = "transfer"
)

func ValidTransactionKind(k TransactionKind) bool {
	switch k {
	case TxIncome, TxExpense, TxTransfer:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "pending"
	TxStatusCompleted TransactionStatus = "completed"
	TxStatusCanceled  TransactionStatus = "canceled"
)

// =============================================================================
// INVOICE STATUS
// =============================================================================

// InvoiceStatus is one of the four PERSISTED billing-cycle states.
// "Overdue" is deliberately absent: it is a derived display predicate
// (see Invoice.IsOverdue), never a stored transition target.
type InvoiceStatus string

const (
	InvoiceOpen          InvoiceStatus = "open"
	InvoiceClosed        InvoiceStatus = "closed"
	InvoicePartiallyPaid InvoiceStatus = "partially_paid"
	InvoicePaid          InvoiceStatus = "paid"
)

// =============================================================================
// MONEY HELPERS
// =============================================================================

// NewMoney builds a decimal amount from a float. Test and demo convenience;
// production paths parse strings.
func NewMoney(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// MustMoney parses a decimal string, returning zero on malformed input.
func MustMoney(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
