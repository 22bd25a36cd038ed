/*
impact.go - The balance impact engine

PURPOSE:
  Translates a transaction into the signed delta it produces on each
  affected account, and applies or reverses those deltas through the
  account ledger.

THE SIGN RULE (the core subtlety):
  For a standard account the balance is money the user HAS:
      Income  -> +amount
      Expense -> -amount
  For a credit card the balance is OUTSTANDING DEBT, so the rule inverts:
      Expense -> +amount   (debt grows)
      Income  -> -amount   (a refund shrinks debt)
  A Transfer applies the Expense rule at the source and the Income rule at
  the destination. Transferring into a credit card is therefore a payment:
  the destination delta is -amount, debt shrinks.

REVERSAL:
  Edits and deletes recompute the ORIGINAL transaction's deltas and apply
  their negation, restoring pre-transaction balances. An update is
  revert(old) then apply(new) - two independent steps, not an atomic diff.

FAILURE MODEL:
  Missing or soft-deleted accounts surface ErrAccountNotFound. There is no
  compensating rollback: if a transfer's source adjustment succeeds and the
  destination lookup then fails, the source-side mutation stands and the
  error is surfaced to the caller.

SEE ALSO:
  - account.go: AdjustBalance primitive
  - invoice/period.go: the resolver that tags card transactions
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SIGN RULE
// =============================================================================

// ImpactDelta returns the signed balance delta a non-transfer transaction
// kind produces on an account of the given kind. Amount must be the stored
// (positive) magnitude.
func ImpactDelta(kind TransactionKind, accountKind AccountKind, amount decimal.Decimal) decimal.Decimal {
	creditCard := accountKind == KindCreditCard
	switch kind {
	case TxIncome:
		if creditCard {
			return amount.Neg()
		}
		return amount
	case TxExpense:
		if creditCard {
			return amount
		}
		return amount.Neg()
	}
	return decimal.Zero
}

// TransferDeltas returns the (source, destination) deltas for a transfer:
// the Expense rule at the source, the Income rule at the destination.
func TransferDeltas(sourceKind, destKind AccountKind, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	return ImpactDelta(TxExpense, sourceKind, amount), ImpactDelta(TxIncome, destKind, amount)
}

// =============================================================================
// INVOICE RESOLVER - Provided by the invoice package
// =============================================================================

// InvoiceResolver locates (creating if absent) the billing bucket a
// credit-card transaction belongs to. Implemented by invoice.Manager.
type InvoiceResolver interface {
	InvoiceForDate(ctx context.Context, userID UserID, accountID AccountID, date Date) (*Invoice, error)
}

// =============================================================================
// IMPACT ENGINE
// =============================================================================

// ImpactEngine applies and reverses the balance impact of transactions.
type ImpactEngine struct {
	accounts *AccountLedger
	resolver InvoiceResolver
}

// NewImpactEngine builds an engine. The resolver may be nil, in which case
// credit-card transactions are applied without invoice tagging (used by
// flows that pre-tag, and by tests that exercise the sign rule alone).
func NewImpactEngine(accounts *AccountLedger, resolver InvoiceResolver) *ImpactEngine {
	return &ImpactEngine{accounts: accounts, resolver: resolver}
}

// Apply resolves the affected account(s), tags credit-card transactions
// with their invoice bucket, and applies the signed deltas.
// The transaction is mutated in place (InvoiceID); persisting it is the
// caller's responsibility.
func (e *ImpactEngine) Apply(ctx context.Context, userID UserID, tx *Transaction) error {
	return e.impact(ctx, userID, tx, false)
}

// Revert applies the negation of the transaction's deltas, restoring the
// balances to their pre-transaction values.
func (e *ImpactEngine) Revert(ctx context.Context, userID UserID, tx *Transaction) error {
	return e.impact(ctx, userID, tx, true)
}

func (e *ImpactEngine) impact(ctx context.Context, userID UserID, tx *Transaction, reverse bool) error {
	acc, err := e.accounts.Get(ctx, userID, tx.AccountID)
	if err != nil {
		return err
	}

	if tx.IsTransfer() {
		return e.impactTransfer(ctx, userID, tx, acc, reverse)
	}

	// Tag the billing bucket before touching the balance so a resolver
	// failure leaves the account untouched.
	if !reverse && acc.IsCreditCard() && tx.InvoiceID == "" && e.resolver != nil {
		inv, err := e.resolver.InvoiceForDate(ctx, userID, acc.ID, tx.Date)
		if err != nil {
			return err
		}
		tx.InvoiceID = inv.ID
	}

	delta := ImpactDelta(tx.Kind, acc.Kind, tx.Amount)
	if reverse {
		delta = delta.Neg()
	}
	_, err = e.accounts.AdjustBalance(ctx, userID, acc.ID, delta)
	return err
}

// impactTransfer debits the source and credits the destination.
// Source first; a destination failure after a successful source write is
// surfaced without undoing the source side.
func (e *ImpactEngine) impactTransfer(ctx context.Context, userID UserID, tx *Transaction, source *Account, reverse bool) error {
	if tx.DestinationAccountID == "" {
		return ErrMissingDestination
	}

	srcDelta := ImpactDelta(TxExpense, source.Kind, tx.Amount)
	if reverse {
		srcDelta = srcDelta.Neg()
	}
	if _, err := e.accounts.AdjustBalance(ctx, userID, source.ID, srcDelta); err != nil {
		return err
	}

	dest, err := e.accounts.Get(ctx, userID, tx.DestinationAccountID)
	if err != nil {
		return err
	}
	destDelta := ImpactDelta(TxIncome, dest.Kind, tx.Amount)
	if reverse {
		destDelta = destDelta.Neg()
	}
	_, err = e.accounts.AdjustBalance(ctx, userID, dest.ID, destDelta)
	return err
}
