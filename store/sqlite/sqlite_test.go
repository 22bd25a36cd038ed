package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgfauth/money-manager/ledger"
	"github.com/lgfauth/money-manager/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testAccount(id string) *ledger.Account {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	return &ledger.Account{
		ID:             ledger.AccountID(id),
		UserID:         "user-1",
		Name:           "Visa Gold",
		Kind:           ledger.KindCreditCard,
		Balance:        ledger.MustMoney("120.50"),
		InitialBalance: ledger.MustMoney("0"),
		CreditLimit:    ledger.MustMoney("5000"),
		ClosingDay:     15,
		DueDayOffset:   10,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func testInvoice(id, accID, month string, status ledger.InvoiceStatus) *ledger.Invoice {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	return &ledger.Invoice{
		ID:              ledger.InvoiceID(id),
		AccountID:       ledger.AccountID(accID),
		UserID:          "user-1",
		PeriodStart:     ledger.NewDate(2025, time.February, 16),
		PeriodEnd:       ledger.NewDate(2025, time.March, 15),
		DueDate:         ledger.NewDate(2025, time.March, 25),
		TotalAmount:     ledger.MustMoney("200"),
		PaidAmount:      ledger.MustMoney("0"),
		RemainingAmount: ledger.MustMoney("200"),
		Status:          status,
		ReferenceMonth:  month,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// =============================================================================
// ACCOUNT PERSISTENCE TESTS
// =============================================================================

func TestAccounts_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	acc := testAccount("acc-1")
	require.NoError(t, store.AddAccount(ctx, acc))

	got, err := store.GetAccount(ctx, "acc-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, acc.Name, got.Name)
	assert.Equal(t, acc.Kind, got.Kind)
	assert.True(t, acc.Balance.Equal(got.Balance))
	assert.True(t, acc.CreditLimit.Equal(got.CreditLimit))
	assert.Equal(t, acc.ClosingDay, got.ClosingDay)
	assert.True(t, got.LastClosedAt.IsZero(), "never closed survives as zero time")
	assert.Empty(t, got.CurrentOpenInvoiceID)
}

func TestAccounts_GetMissing_ReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetAccount(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAccounts_UpdateBumpsRevision(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	acc := testAccount("acc-1")
	require.NoError(t, store.AddAccount(ctx, acc))

	acc.Balance = ledger.MustMoney("300")
	require.NoError(t, store.UpdateAccount(ctx, acc))
	assert.Equal(t, int64(1), acc.Revision, "caller sees the new revision")

	got, err := store.GetAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Revision)
	assert.True(t, ledger.MustMoney("300").Equal(got.Balance))
}

func TestAccounts_StaleRevision_Conflict(t *testing.T) {
	// GIVEN: Two copies of the same account at revision 0
	// WHEN: Both write
	// THEN: The second write loses with ErrConcurrentModification

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddAccount(ctx, testAccount("acc-1")))

	first, err := store.GetAccount(ctx, "acc-1")
	require.NoError(t, err)
	second, err := store.GetAccount(ctx, "acc-1")
	require.NoError(t, err)

	require.NoError(t, store.UpdateAccount(ctx, first))
	err = store.UpdateAccount(ctx, second)

	assert.ErrorIs(t, err, ledger.ErrConcurrentModification)
	assert.True(t, ledger.IsRetryable(err))
}

func TestAccounts_UpdateMissing_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateAccount(context.Background(), testAccount("ghost"))
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestAccounts_ListByUser_SkipsDeletedAndForeign(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mine := testAccount("acc-mine")
	require.NoError(t, store.AddAccount(ctx, mine))

	deleted := testAccount("acc-deleted")
	deleted.Deleted = true
	require.NoError(t, store.AddAccount(ctx, deleted))

	foreign := testAccount("acc-foreign")
	foreign.UserID = "user-2"
	require.NoError(t, store.AddAccount(ctx, foreign))

	got, err := store.ListAccountsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)
}

// =============================================================================
// TRANSACTION PERSISTENCE TESTS
// =============================================================================

func TestTransactions_RoundTripWithTags(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	tx := &ledger.Transaction{
		ID:          "tx-1",
		UserID:      "user-1",
		AccountID:   "acc-1",
		CategoryID:  "cat-groceries",
		Kind:        ledger.TxExpense,
		Amount:      ledger.MustMoney("86.40"),
		Date:        ledger.NewDate(2025, time.March, 9),
		Description: "Groceries",
		Tags:        []string{"food", "weekly"},
		InvoiceID:   "inv-1",
		Status:      ledger.TxStatusCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, store.AddTransaction(ctx, tx))

	got, err := store.GetTransaction(ctx, "tx-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.True(t, tx.Amount.Equal(got.Amount))
	assert.Equal(t, tx.Date, got.Date)
	assert.Equal(t, []string{"food", "weekly"}, got.Tags)
	assert.Equal(t, tx.InvoiceID, got.InvoiceID)
	assert.Empty(t, got.DestinationAccountID)
}

func TestTransactions_ListByAccount_SkipsDeleted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	live := &ledger.Transaction{
		ID: "tx-live", UserID: "user-1", AccountID: "acc-1",
		Kind: ledger.TxExpense, Amount: ledger.MustMoney("10"),
		Date: ledger.NewDate(2025, time.March, 9), Status: ledger.TxStatusCompleted,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.AddTransaction(ctx, live))

	gone := &ledger.Transaction{
		ID: "tx-gone", UserID: "user-1", AccountID: "acc-1",
		Kind: ledger.TxExpense, Amount: ledger.MustMoney("20"),
		Date: ledger.NewDate(2025, time.March, 8), Status: ledger.TxStatusCanceled,
		Deleted: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.AddTransaction(ctx, gone))

	got, err := store.ListTransactionsByAccount(ctx, "user-1", "acc-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, live.ID, got[0].ID)
}

// =============================================================================
// INVOICE PERSISTENCE TESTS
// =============================================================================

func TestInvoices_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inv := testInvoice("inv-1", "acc-1", "2025-03", ledger.InvoiceOpen)
	require.NoError(t, store.AddInvoice(ctx, inv))

	got, err := store.GetInvoice(ctx, "inv-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, inv.PeriodStart, got.PeriodStart)
	assert.Equal(t, inv.PeriodEnd, got.PeriodEnd)
	assert.Equal(t, inv.DueDate, got.DueDate)
	assert.True(t, inv.TotalAmount.Equal(got.TotalAmount))
	assert.Equal(t, "2025-03", got.ReferenceMonth)
	assert.True(t, got.ClosedAt.IsZero())
	assert.True(t, got.PaidAt.IsZero())
}

func TestInvoices_OnePerAccountMonth(t *testing.T) {
	// The unique index backs the one-bucket-per-cycle invariant.

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddInvoice(ctx, testInvoice("inv-1", "acc-1", "2025-03", ledger.InvoiceOpen)))

	err := store.AddInvoice(ctx, testInvoice("inv-dup", "acc-1", "2025-03", ledger.InvoiceOpen))
	assert.Error(t, err, "duplicate (account, month) must be rejected")

	// Same month on another account is fine.
	assert.NoError(t, store.AddInvoice(ctx, testInvoice("inv-2", "acc-2", "2025-03", ledger.InvoiceOpen)))
}

func TestInvoices_GetOpenByAccount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddInvoice(ctx, testInvoice("inv-closed", "acc-1", "2025-02", ledger.InvoiceClosed)))
	require.NoError(t, store.AddInvoice(ctx, testInvoice("inv-open", "acc-1", "2025-03", ledger.InvoiceOpen)))

	got, err := store.GetOpenInvoiceByAccount(ctx, "acc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ledger.InvoiceID("inv-open"), got.ID)

	none, err := store.GetOpenInvoiceByAccount(ctx, "acc-2")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestInvoices_OverdueBoundary(t *testing.T) {
	// GIVEN: A closed invoice due March 25
	// WHEN: Querying with today = the due date, then the day after
	// THEN: The invoice is overdue only strictly past the due date

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddInvoice(ctx, testInvoice("inv-1", "acc-1", "2025-03", ledger.InvoiceClosed)))

	onDue, err := store.GetOverdueInvoices(ctx, "user-1", ledger.NewDate(2025, time.March, 25))
	require.NoError(t, err)
	assert.Empty(t, onDue)

	past, err := store.GetOverdueInvoices(ctx, "user-1", ledger.NewDate(2025, time.March, 26))
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, ledger.InvoiceID("inv-1"), past[0].ID)
}

func TestInvoices_OverdueExcludesPaid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	paid := testInvoice("inv-paid", "acc-1", "2025-02", ledger.InvoicePaid)
	paid.PaidAt = time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AddInvoice(ctx, paid))

	partial := testInvoice("inv-partial", "acc-1", "2025-03", ledger.InvoicePartiallyPaid)
	require.NoError(t, store.AddInvoice(ctx, partial))

	got, err := store.GetOverdueInvoices(ctx, "user-1", ledger.NewDate(2025, time.April, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ledger.InvoiceID("inv-partial"), got[0].ID, "partially paid past due is overdue; paid never is")
}

func TestInvoices_ClosedUnpaidOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	later := testInvoice("inv-later", "acc-1", "2025-04", ledger.InvoiceClosed)
	later.DueDate = ledger.NewDate(2025, time.April, 25)
	require.NoError(t, store.AddInvoice(ctx, later))

	sooner := testInvoice("inv-sooner", "acc-1", "2025-03", ledger.InvoiceClosed)
	require.NoError(t, store.AddInvoice(ctx, sooner))

	open := testInvoice("inv-open", "acc-1", "2025-05", ledger.InvoiceOpen)
	require.NoError(t, store.AddInvoice(ctx, open))

	got, err := store.GetClosedUnpaidInvoices(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ledger.InvoiceID("inv-sooner"), got[0].ID, "due soonest first")
	assert.Equal(t, ledger.InvoiceID("inv-later"), got[1].ID)
}
