package ledger

import (
	"time"
)

// =============================================================================
// DATE - Day-granularity time point (billing cycles are date-driven)
// =============================================================================

// Date is a calendar day, normalized to midnight UTC. All billing-period
// logic runs on Dates; timestamps (closedAt, paidAt) stay time.Time.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// ReferenceMonth formats the date's month as the YYYY-MM billing label.
func (d Date) ReferenceMonth() string { return d.Time.Format("2006-01") }

// =============================================================================
// CALENDAR HELPERS - Closing-day clamping
// =============================================================================

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay clamps a configured day-of-month to the month's actual length.
// A card configured to close on the 31st closes on April 30 in April.
func ClampDay(year int, month time.Month, day int) int {
	if day < 1 {
		day = 1
	}
	if max := DaysInMonth(year, month); day > max {
		return max
	}
	return day
}

// ClampedDate builds a date with the day-of-month clamped to the month length.
func ClampedDate(year int, month time.Month, day int) Date {
	return NewDate(year, month, ClampDay(year, month, day))
}

// =============================================================================
// CLOCK - Injected time source
// =============================================================================

// Clock abstracts wall-clock access so lifecycle and scheduler logic is
// deterministically testable. Production code uses SystemClock; tests pin a
// FixedClock to a known date.
type Clock interface {
	Now() time.Time
	Today() Date
}

// SystemClock reads the real wall clock (UTC).
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
func (SystemClock) Today() Date    { return DateOf(time.Now().UTC()) }

// FixedClock always reports the same instant.
type FixedClock struct {
	Instant time.Time
}

func NewFixedClock(year int, month time.Month, day int) *FixedClock {
	return &FixedClock{Instant: time.Date(year, month, day, 12, 0, 0, 0, time.UTC)}
}

func (c *FixedClock) Now() time.Time { return c.Instant }
func (c *FixedClock) Today() Date    { return DateOf(c.Instant) }

// Advance moves the fixed clock forward, for multi-day test scenarios.
func (c *FixedClock) Advance(d time.Duration) { c.Instant = c.Instant.Add(d) }

// AdvanceDays moves the fixed clock forward by whole days.
func (c *FixedClock) AdvanceDays(n int) { c.Instant = c.Instant.AddDate(0, 0, n) }
