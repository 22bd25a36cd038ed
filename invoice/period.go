/*
Package invoice implements the credit-card billing lifecycle.

PURPOSE:
  Everything date-and-state about credit-card invoices lives here:
  - which billing cycle (reference month) a transaction belongs to
  - how invoices open, close, and get paid
  - the daily scheduled closure batch

  The ledger package supplies the entities and balance primitives; this
  package owns the transitions.

KEY CONCEPTS IN THIS FILE (period.go):
  - Closing day: the day-of-month the billing period ends, clamped to the
    month's actual length (closing day 31 closes April 30).
  - Reference month: the YYYY-MM label of the target closing date. A
    transaction dated ON the closing day belongs to this month's cycle;
    one day later belongs to the next.

SEE ALSO:
  - lifecycle.go: state transitions built on the resolver
  - ledger/date.go: clamping helpers
*/
package invoice

import (
	"github.com/lgfauth/money-manager/ledger"
)

// =============================================================================
// PERIOD RESOLUTION - Pure date math
// =============================================================================

// TargetClosing returns the closing date whose billing cycle contains the
// given date: this month's clamped closing day when the date is on or
// before it, otherwise next month's.
func TargetClosing(date ledger.Date, closingDay int) ledger.Date {
	closingThisMonth := ledger.ClampedDate(date.Year(), date.Month(), closingDay)
	if date.BeforeOrEqual(closingThisMonth) {
		return closingThisMonth
	}
	next := date.AddMonths(1)
	return ledger.ClampedDate(next.Year(), next.Month(), closingDay)
}

// ReferenceMonthFor returns the YYYY-MM billing label for a transaction
// date under the account's closing day.
func ReferenceMonthFor(date ledger.Date, closingDay int) string {
	return TargetClosing(date, closingDay).ReferenceMonth()
}

// ClosesToday reports whether the account's (clamped) closing day falls on
// the given date. Used by the scheduled-closure trigger: clamping here
// keeps a card configured with closing day 31 closing on April 30 instead
// of never closing in short months.
func ClosesToday(acc *ledger.Account, today ledger.Date) bool {
	return today.Day() == ledger.ClampDay(today.Year(), today.Month(), acc.ClosingDayOrDefault())
}

// periodStartAfter returns the first day of a new billing period for an
// account: the day after the last closing, or the fallback when the card
// has never closed.
func periodStartAfter(acc *ledger.Account, fallback ledger.Date) ledger.Date {
	if acc.LastClosedAt.IsZero() {
		return fallback
	}
	return ledger.DateOf(acc.LastClosedAt).AddDays(1)
}
