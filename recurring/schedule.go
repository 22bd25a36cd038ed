/*
Package recurring computes occurrence dates for recurring transactions.

PURPOSE:
  A recurring transaction (rent, salary, subscription) carries a frequency
  and an anchor day. This package is the self-contained date utility that
  answers "when is the next occurrence?" - the transactions it spawns flow
  through the regular balance-impact path like any other.

MONTH-BASED CLAMPING:
  Month-based frequencies keep the ANCHOR day and clamp per month:
  a schedule anchored on the 31st fires Jan 31, Feb 28, Mar 31, Apr 30...
  The anchor never drifts to the shorter month's day.
*/
package recurring

import (
	"github.com/lgfauth/money-manager/ledger"
)

// =============================================================================
// FREQUENCY
// =============================================================================

type Frequency string

const (
	Daily      Frequency = "daily"
	Weekly     Frequency = "weekly"
	Biweekly   Frequency = "biweekly"
	Monthly    Frequency = "monthly"
	Quarterly  Frequency = "quarterly"
	Semiannual Frequency = "semiannual"
	Annual     Frequency = "annual"
)

func ValidFrequency(f Frequency) bool {
	switch f {
	case Daily, Weekly, Biweekly, Monthly, Quarterly, Semiannual, Annual:
		return true
	}
	return false
}

// months returns the month step for month-based frequencies, 0 otherwise.
func (f Frequency) months() int {
	switch f {
	case Monthly:
		return 1
	case Quarterly:
		return 3
	case Semiannual:
		return 6
	case Annual:
		return 12
	}
	return 0
}

// days returns the day step for day-based frequencies, 0 otherwise.
func (f Frequency) days() int {
	switch f {
	case Daily:
		return 1
	case Weekly:
		return 7
	case Biweekly:
		return 14
	}
	return 0
}

// =============================================================================
// SCHEDULE
// =============================================================================

// Schedule describes a recurring transaction's cadence. AnchorDay is the
// configured day-of-month for month-based frequencies; it is what keeps a
// day-31 schedule returning to the 31st after a 28-day February.
type Schedule struct {
	Frequency Frequency
	AnchorDay int
}

// NewSchedule builds a schedule anchored on the start date's day-of-month.
func NewSchedule(freq Frequency, start ledger.Date) Schedule {
	return Schedule{Frequency: freq, AnchorDay: start.Day()}
}

// Next returns the occurrence following `current`.
func (s Schedule) Next(current ledger.Date) ledger.Date {
	if d := s.Frequency.days(); d > 0 {
		return current.AddDays(d)
	}

	step := s.Frequency.months()
	if step == 0 {
		// Unknown frequency: treat as monthly rather than loop forever.
		step = 1
	}

	anchor := s.AnchorDay
	if anchor < 1 {
		anchor = current.Day()
	}

	// Step whole months from the first of the current month, then clamp the
	// anchor day into the target month.
	first := ledger.NewDate(current.Year(), current.Month(), 1).AddMonths(step)
	return ledger.ClampedDate(first.Year(), first.Month(), anchor)
}

// OccurrencesUntil returns every occurrence after `current` up to and
// including `until`.
func (s Schedule) OccurrencesUntil(current, until ledger.Date) []ledger.Date {
	var out []ledger.Date
	next := s.Next(current)
	for next.BeforeOrEqual(until) {
		out = append(out, next)
		next = s.Next(next)
	}
	return out
}
