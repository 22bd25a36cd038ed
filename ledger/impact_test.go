package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgfauth/money-manager/ledger"
	"github.com/lgfauth/money-manager/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const testUser = ledger.UserID("user-1")

func newTestEngine(resolver ledger.InvoiceResolver) (*ledger.ImpactEngine, *ledger.AccountLedger, *store.Memory) {
	mem := store.NewMemory()
	clock := ledger.NewFixedClock(2025, time.March, 10)
	acctLedger := ledger.NewAccountLedger(mem.Accounts(), clock)
	return ledger.NewImpactEngine(acctLedger, resolver), acctLedger, mem
}

func addAccount(t *testing.T, mem *store.Memory, id string, kind ledger.AccountKind, balance string) *ledger.Account {
	t.Helper()
	acc := &ledger.Account{
		ID:      ledger.AccountID(id),
		UserID:  testUser,
		Name:    id,
		Kind:    kind,
		Balance: ledger.MustMoney(balance),
	}
	require.NoError(t, mem.Accounts().Add(context.Background(), acc))
	return acc
}

func balanceOf(t *testing.T, acctLedger *ledger.AccountLedger, id ledger.AccountID) string {
	t.Helper()
	acc, err := acctLedger.Get(context.Background(), testUser, id)
	require.NoError(t, err)
	return acc.Balance.String()
}

// stubResolver hands back a fixed invoice for every date.
type stubResolver struct {
	inv *ledger.Invoice
}

func (s *stubResolver) InvoiceForDate(_ context.Context, _ ledger.UserID, _ ledger.AccountID, _ ledger.Date) (*ledger.Invoice, error) {
	return s.inv, nil
}

// =============================================================================
// SIGN RULE TESTS
// =============================================================================

func TestImpactDelta_StandardAccount(t *testing.T) {
	amount := ledger.MustMoney("100")

	// Income grows the balance, expense shrinks it.
	assert.True(t, ledger.MustMoney("100").Equal(ledger.ImpactDelta(ledger.TxIncome, ledger.KindChecking, amount)))
	assert.True(t, ledger.MustMoney("-100").Equal(ledger.ImpactDelta(ledger.TxExpense, ledger.KindChecking, amount)))
	assert.True(t, ledger.MustMoney("-100").Equal(ledger.ImpactDelta(ledger.TxExpense, ledger.KindSavings, amount)))
	assert.True(t, ledger.MustMoney("-100").Equal(ledger.ImpactDelta(ledger.TxExpense, ledger.KindCash, amount)))
}

func TestImpactDelta_CreditCard_Inverted(t *testing.T) {
	// The card balance is outstanding debt: spending grows it, a refund
	// shrinks it.
	amount := ledger.MustMoney("100")

	assert.True(t, ledger.MustMoney("100").Equal(ledger.ImpactDelta(ledger.TxExpense, ledger.KindCreditCard, amount)))
	assert.True(t, ledger.MustMoney("-100").Equal(ledger.ImpactDelta(ledger.TxIncome, ledger.KindCreditCard, amount)))
}

func TestTransferDeltas_IntoCreditCard_IsAPayment(t *testing.T) {
	// GIVEN: A transfer from checking to a credit card
	// WHEN: Computing the deltas
	// THEN: Checking loses the amount and the card's DEBT shrinks

	src, dst := ledger.TransferDeltas(ledger.KindChecking, ledger.KindCreditCard, ledger.MustMoney("200"))

	assert.True(t, ledger.MustMoney("-200").Equal(src))
	assert.True(t, ledger.MustMoney("-200").Equal(dst))
}

func TestTransferDeltas_BetweenStandardAccounts(t *testing.T) {
	src, dst := ledger.TransferDeltas(ledger.KindChecking, ledger.KindSavings, ledger.MustMoney("200"))

	assert.True(t, ledger.MustMoney("-200").Equal(src))
	assert.True(t, ledger.MustMoney("200").Equal(dst))
}

// =============================================================================
// APPLY / REVERT TESTS
// =============================================================================

func TestApply_ExpenseOnChecking(t *testing.T) {
	engine, acctLedger, mem := newTestEngine(nil)
	acc := addAccount(t, mem, "check-1", ledger.KindChecking, "500")

	tx := &ledger.Transaction{
		ID:        "tx-1",
		UserID:    testUser,
		AccountID: acc.ID,
		Kind:      ledger.TxExpense,
		Amount:    ledger.MustMoney("120.50"),
		Date:      ledger.NewDate(2025, time.March, 9),
	}
	require.NoError(t, engine.Apply(context.Background(), testUser, tx))

	assert.Equal(t, "379.5", balanceOf(t, acctLedger, acc.ID))
}

func TestApply_ExpenseOnCard_GrowsDebtAndTagsInvoice(t *testing.T) {
	// GIVEN: A card with zero debt and a resolver with an open bucket
	// WHEN: Applying a 80.00 expense
	// THEN: Debt grows to 80.00 and the transaction is tagged to the bucket

	bucket := &ledger.Invoice{ID: "inv-1", Status: ledger.InvoiceOpen}
	engine, acctLedger, mem := newTestEngine(&stubResolver{inv: bucket})
	card := addAccount(t, mem, "card-1", ledger.KindCreditCard, "0")

	tx := &ledger.Transaction{
		ID:        "tx-1",
		UserID:    testUser,
		AccountID: card.ID,
		Kind:      ledger.TxExpense,
		Amount:    ledger.MustMoney("80.00"),
		Date:      ledger.NewDate(2025, time.March, 9),
	}
	require.NoError(t, engine.Apply(context.Background(), testUser, tx))

	assert.Equal(t, "80", balanceOf(t, acctLedger, card.ID))
	assert.Equal(t, bucket.ID, tx.InvoiceID)
}

func TestApply_PreTaggedCardExpense_KeepsTag(t *testing.T) {
	bucket := &ledger.Invoice{ID: "inv-new", Status: ledger.InvoiceOpen}
	engine, _, mem := newTestEngine(&stubResolver{inv: bucket})
	card := addAccount(t, mem, "card-1", ledger.KindCreditCard, "0")

	tx := &ledger.Transaction{
		ID:        "tx-1",
		UserID:    testUser,
		AccountID: card.ID,
		Kind:      ledger.TxExpense,
		Amount:    ledger.MustMoney("80.00"),
		Date:      ledger.NewDate(2025, time.March, 9),
		InvoiceID: "inv-original",
	}
	require.NoError(t, engine.Apply(context.Background(), testUser, tx))

	assert.Equal(t, ledger.InvoiceID("inv-original"), tx.InvoiceID, "existing tags are never overwritten")
}

func TestRevert_RestoresBalance(t *testing.T) {
	// GIVEN: An applied expense
	// WHEN: Reverting it
	// THEN: The balance returns exactly to its pre-transaction value

	engine, acctLedger, mem := newTestEngine(nil)
	acc := addAccount(t, mem, "check-1", ledger.KindChecking, "500")

	tx := &ledger.Transaction{
		ID:        "tx-1",
		UserID:    testUser,
		AccountID: acc.ID,
		Kind:      ledger.TxExpense,
		Amount:    ledger.MustMoney("120.50"),
		Date:      ledger.NewDate(2025, time.March, 9),
	}
	ctx := context.Background()
	require.NoError(t, engine.Apply(ctx, testUser, tx))
	require.NoError(t, engine.Revert(ctx, testUser, tx))

	assert.Equal(t, "500", balanceOf(t, acctLedger, acc.ID))
}

func TestApplyTransfer_CheckingToCard_PaysDownDebt(t *testing.T) {
	// GIVEN: Checking with 1000 and a card carrying 300 of debt
	// WHEN: Transferring 300 from checking to the card
	// THEN: Checking drops to 700 and the debt drops to zero

	engine, acctLedger, mem := newTestEngine(nil)
	checking := addAccount(t, mem, "check-1", ledger.KindChecking, "1000")
	card := addAccount(t, mem, "card-1", ledger.KindCreditCard, "300")

	tx := &ledger.Transaction{
		ID:                   "tx-1",
		UserID:               testUser,
		AccountID:            checking.ID,
		Kind:                 ledger.TxTransfer,
		Amount:               ledger.MustMoney("300"),
		Date:                 ledger.NewDate(2025, time.March, 9),
		DestinationAccountID: card.ID,
	}
	require.NoError(t, engine.Apply(context.Background(), testUser, tx))

	assert.Equal(t, "700", balanceOf(t, acctLedger, checking.ID))
	assert.Equal(t, "0", balanceOf(t, acctLedger, card.ID))
}

func TestApplyTransfer_RoundTrip(t *testing.T) {
	engine, acctLedger, mem := newTestEngine(nil)
	checking := addAccount(t, mem, "check-1", ledger.KindChecking, "1000")
	savings := addAccount(t, mem, "save-1", ledger.KindSavings, "50")

	tx := &ledger.Transaction{
		ID:                   "tx-1",
		UserID:               testUser,
		AccountID:            checking.ID,
		Kind:                 ledger.TxTransfer,
		Amount:               ledger.MustMoney("250"),
		Date:                 ledger.NewDate(2025, time.March, 9),
		DestinationAccountID: savings.ID,
	}
	ctx := context.Background()
	require.NoError(t, engine.Apply(ctx, testUser, tx))
	require.NoError(t, engine.Revert(ctx, testUser, tx))

	assert.Equal(t, "1000", balanceOf(t, acctLedger, checking.ID))
	assert.Equal(t, "50", balanceOf(t, acctLedger, savings.ID))
}

func TestApplyTransfer_MissingDestination_Rejected(t *testing.T) {
	engine, acctLedger, mem := newTestEngine(nil)
	checking := addAccount(t, mem, "check-1", ledger.KindChecking, "1000")

	tx := &ledger.Transaction{
		ID:        "tx-1",
		UserID:    testUser,
		AccountID: checking.ID,
		Kind:      ledger.TxTransfer,
		Amount:    ledger.MustMoney("250"),
		Date:      ledger.NewDate(2025, time.March, 9),
	}
	err := engine.Apply(context.Background(), testUser, tx)

	assert.ErrorIs(t, err, ledger.ErrMissingDestination)
	assert.Equal(t, "1000", balanceOf(t, acctLedger, checking.ID), "rejected before any mutation")
}

func TestApply_UnknownAccount_NotFound(t *testing.T) {
	engine, _, _ := newTestEngine(nil)

	tx := &ledger.Transaction{
		ID:        "tx-1",
		UserID:    testUser,
		AccountID: "ghost",
		Kind:      ledger.TxExpense,
		Amount:    ledger.MustMoney("10"),
		Date:      ledger.NewDate(2025, time.March, 9),
	}
	err := engine.Apply(context.Background(), testUser, tx)

	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

// =============================================================================
// ACCOUNT LEDGER TESTS
// =============================================================================

func TestAccountLedgerGet_ForeignAccount_NotFound(t *testing.T) {
	_, acctLedger, mem := newTestEngine(nil)
	acc := addAccount(t, mem, "check-1", ledger.KindChecking, "100")

	_, err := acctLedger.Get(context.Background(), ledger.UserID("intruder"), acc.ID)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound, "foreign accounts look missing, not forbidden")
}

func TestAccountLedgerGet_DeletedAccount_NotFound(t *testing.T) {
	_, acctLedger, mem := newTestEngine(nil)
	acc := addAccount(t, mem, "check-1", ledger.KindChecking, "100")
	ctx := context.Background()

	fresh, err := mem.Accounts().GetByID(ctx, acc.ID)
	require.NoError(t, err)
	fresh.Deleted = true
	require.NoError(t, mem.Accounts().Update(ctx, fresh))

	_, err = acctLedger.Get(ctx, testUser, acc.ID)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestStoreUpdate_StaleRevision_Conflict(t *testing.T) {
	// GIVEN: Two readers holding the same account revision
	// WHEN: Both write
	// THEN: The second write fails the optimistic check

	_, _, mem := newTestEngine(nil)
	acc := addAccount(t, mem, "check-1", ledger.KindChecking, "100")
	ctx := context.Background()

	first, err := mem.Accounts().GetByID(ctx, acc.ID)
	require.NoError(t, err)
	second, err := mem.Accounts().GetByID(ctx, acc.ID)
	require.NoError(t, err)

	require.NoError(t, mem.Accounts().Update(ctx, first))
	err = mem.Accounts().Update(ctx, second)

	assert.ErrorIs(t, err, ledger.ErrConcurrentModification)
	assert.True(t, ledger.IsRetryable(err))
}

func TestAdjustBalance_RetriesPastConflict(t *testing.T) {
	// GIVEN: A writer that bumps the revision between the ledger's read and
	//        write would normally lose the update
	// WHEN: AdjustBalance runs its retry loop
	// THEN: The delta lands despite the conflict window being exercised by
	//       sequential adjustments

	_, acctLedger, mem := newTestEngine(nil)
	acc := addAccount(t, mem, "check-1", ledger.KindChecking, "100")
	ctx := context.Background()

	// Sequential adjustments each bump the revision; every one must land.
	for i := 0; i < 5; i++ {
		_, err := acctLedger.AdjustBalance(ctx, testUser, acc.ID, ledger.MustMoney("10"))
		require.NoError(t, err)
	}

	assert.Equal(t, "150", balanceOf(t, acctLedger, acc.ID))

	fresh, err := mem.Accounts().GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), fresh.Revision)
}
