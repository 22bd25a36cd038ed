package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CREDIT CARD INVOICE - One billing cycle for one card
// =============================================================================

// ReferenceMonthHistory is the synthetic bucket that retroactively absorbs
// transactions predating the invoicing feature. At most one per account.
const ReferenceMonthHistory = "HISTORY"

// Invoice represents one billing cycle of a credit-card account.
//
// INVARIANTS:
//   - Exactly one invoice per (AccountID, ReferenceMonth) pair.
//   - At most one invoice with status Open per account.
//   - RemainingAmount == TotalAmount - PaidAmount after every mutation.
//   - Status moves forward only: Open -> Closed -> PartiallyPaid -> Paid
//     (recalculation while Closed/PartiallyPaid may change Remaining
//     without changing Status).
type Invoice struct {
	ID        InvoiceID
	AccountID AccountID
	UserID    UserID

	PeriodStart Date
	PeriodEnd   Date
	DueDate     Date

	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal

	Status   InvoiceStatus
	ClosedAt time.Time
	PaidAt   time.Time

	// ReferenceMonth is the YYYY-MM billing label keyed to the closing
	// date's month, or the literal "HISTORY" for the migration bucket.
	ReferenceMonth string

	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOverdue is the derived display predicate: unpaid past the due date.
// Overdue is NOT a fifth stored state; every query path that filters by
// overdue must go through this predicate (or its SQL equivalent).
func (i *Invoice) IsOverdue(today Date) bool {
	return i.Status != InvoicePaid && i.DueDate.Before(today)
}

// Recalculate sets the total and re-derives the remaining amount.
// Idempotent; safe to call in any status.
func (i *Invoice) Recalculate(total decimal.Decimal) {
	i.TotalAmount = total
	i.RemainingAmount = i.TotalAmount.Sub(i.PaidAmount)
}

// Contains reports whether a date falls within the billing period.
func (i *Invoice) Contains(d Date) bool {
	return d.AfterOrEqual(i.PeriodStart) && d.BeforeOrEqual(i.PeriodEnd)
}
