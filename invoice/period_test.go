package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lgfauth/money-manager/invoice"
	"github.com/lgfauth/money-manager/ledger"
)

// =============================================================================
// TARGET CLOSING TESTS
// =============================================================================

func TestTargetClosing_BeforeClosingDay_SameMonth(t *testing.T) {
	// GIVEN: A card closing on the 15th
	// WHEN: Resolving a purchase dated the 10th
	// THEN: It belongs to this month's cycle

	date := ledger.NewDate(2025, time.March, 10)
	target := invoice.TargetClosing(date, 15)

	assert.Equal(t, ledger.NewDate(2025, time.March, 15), target)
}

func TestTargetClosing_OnClosingDay_SameMonth(t *testing.T) {
	// GIVEN: A card closing on the 15th
	// WHEN: Resolving a purchase dated exactly the 15th
	// THEN: It still belongs to this month's cycle (inclusive boundary)

	date := ledger.NewDate(2025, time.March, 15)
	target := invoice.TargetClosing(date, 15)

	assert.Equal(t, ledger.NewDate(2025, time.March, 15), target)
}

func TestTargetClosing_DayAfterClosing_NextMonth(t *testing.T) {
	// GIVEN: A card closing on the 15th
	// WHEN: Resolving a purchase dated the 16th
	// THEN: It rolls into next month's cycle

	date := ledger.NewDate(2025, time.March, 16)
	target := invoice.TargetClosing(date, 15)

	assert.Equal(t, ledger.NewDate(2025, time.April, 15), target)
}

func TestTargetClosing_ClampsToMonthLength(t *testing.T) {
	// GIVEN: A card closing on the 31st
	// WHEN: Resolving a purchase dated February 10 (non-leap year)
	// THEN: The cycle closes February 28, not an invalid date

	date := ledger.NewDate(2025, time.February, 10)
	target := invoice.TargetClosing(date, 31)

	assert.Equal(t, ledger.NewDate(2025, time.February, 28), target)
}

func TestTargetClosing_LeapYearFebruary(t *testing.T) {
	// GIVEN: A card closing on the 30th
	// WHEN: Resolving a purchase dated February 2024 (leap year)
	// THEN: The cycle closes February 29

	date := ledger.NewDate(2024, time.February, 1)
	target := invoice.TargetClosing(date, 30)

	assert.Equal(t, ledger.NewDate(2024, time.February, 29), target)
}

func TestTargetClosing_AfterClampedClosing_RollsToFullDayNextMonth(t *testing.T) {
	// GIVEN: A card closing on the 31st
	// WHEN: Resolving a purchase dated March 1 (past February's clamped close)
	// THEN: It belongs to March's cycle, which closes on the full 31st again

	date := ledger.NewDate(2025, time.March, 1)
	target := invoice.TargetClosing(date, 31)

	assert.Equal(t, ledger.NewDate(2025, time.March, 31), target)
}

func TestTargetClosing_DecemberRollsToJanuary(t *testing.T) {
	// GIVEN: A card closing on the 5th
	// WHEN: Resolving a purchase dated December 20
	// THEN: It belongs to January of the NEXT year

	date := ledger.NewDate(2025, time.December, 20)
	target := invoice.TargetClosing(date, 5)

	assert.Equal(t, ledger.NewDate(2026, time.January, 5), target)
}

// =============================================================================
// REFERENCE MONTH TESTS
// =============================================================================

func TestReferenceMonthFor_LabelsTargetMonth(t *testing.T) {
	assert.Equal(t, "2025-03", invoice.ReferenceMonthFor(ledger.NewDate(2025, time.March, 15), 15))
	assert.Equal(t, "2025-04", invoice.ReferenceMonthFor(ledger.NewDate(2025, time.March, 16), 15))
	assert.Equal(t, "2026-01", invoice.ReferenceMonthFor(ledger.NewDate(2025, time.December, 31), 10))
}

// =============================================================================
// SCHEDULED TRIGGER TESTS
// =============================================================================

func TestClosesToday_ExactDay(t *testing.T) {
	acc := &ledger.Account{Kind: ledger.KindCreditCard, ClosingDay: 15}

	assert.True(t, invoice.ClosesToday(acc, ledger.NewDate(2025, time.March, 15)))
	assert.False(t, invoice.ClosesToday(acc, ledger.NewDate(2025, time.March, 14)))
	assert.False(t, invoice.ClosesToday(acc, ledger.NewDate(2025, time.March, 16)))
}

func TestClosesToday_ClampedInShortMonth(t *testing.T) {
	// GIVEN: A card configured to close on the 31st
	// WHEN: February 28 arrives (non-leap year)
	// THEN: The card closes that day; it never skips short months

	acc := &ledger.Account{Kind: ledger.KindCreditCard, ClosingDay: 31}

	assert.True(t, invoice.ClosesToday(acc, ledger.NewDate(2025, time.February, 28)))
	assert.False(t, invoice.ClosesToday(acc, ledger.NewDate(2025, time.February, 27)))
	// April has 30 days
	assert.True(t, invoice.ClosesToday(acc, ledger.NewDate(2025, time.April, 30)))
	// Months with 31 days close on the configured day
	assert.True(t, invoice.ClosesToday(acc, ledger.NewDate(2025, time.March, 31)))
	assert.False(t, invoice.ClosesToday(acc, ledger.NewDate(2025, time.March, 30)))
}

func TestClosesToday_UnsetClosingDayDefaultsToFirst(t *testing.T) {
	acc := &ledger.Account{Kind: ledger.KindCreditCard}

	assert.True(t, invoice.ClosesToday(acc, ledger.NewDate(2025, time.June, 1)))
	assert.False(t, invoice.ClosesToday(acc, ledger.NewDate(2025, time.June, 2)))
}
