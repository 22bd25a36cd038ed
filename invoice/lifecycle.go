/*
lifecycle.go - Invoice state transitions and the scheduled closure batch

PURPOSE:
  Owns the invoice state machine:

      Open -> Closed -> { PartiallyPaid -> Paid | Paid }

  and the flows that drive it: manual/scheduled closing, full and partial
  payment, total recalculation, and the one-shot HISTORY migration bucket.

STATE RULES:
  - Closing requires status Open. Closing recalculates the total first so
    the frozen invoice is up to date, then creates the next Open invoice
    starting the day after the closed period's end.
  - Payment mutates ONLY the invoice row. Recording the offsetting
    transaction that debits the paying account is the caller's concern;
    the invoice bookkeeping stays decoupled from the transaction ledger.
  - At most one Open invoice exists per account at any time.

ATOMICITY:
  Close-and-reopen is two invoice writes plus an account write, each its own
  persistence call. A mid-sequence failure leaves partial state and is
  surfaced (interactive paths) or logged and skipped (scheduled batch).

SEE ALSO:
  - period.go: the date math feeding these flows
  - ledger/impact.go: how card transactions get tagged to their bucket
*/
package invoice

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lgfauth/money-manager/ledger"
)

// historyPeriodStart anchors the migration bucket. Nothing in the system
// predates it.
var historyPeriodStart = ledger.NewDate(2020, time.January, 1)

// =============================================================================
// MANAGER
// =============================================================================

// Manager orchestrates invoice lifecycle operations for all users.
// It implements ledger.InvoiceResolver.
type Manager struct {
	accounts     ledger.AccountStore
	acctLedger   *ledger.AccountLedger
	invoices     ledger.InvoiceStore
	transactions ledger.TransactionStore
	clock        ledger.Clock
}

func NewManager(accounts ledger.AccountStore, invoices ledger.InvoiceStore, transactions ledger.TransactionStore, clock ledger.Clock) *Manager {
	if clock == nil {
		clock = ledger.SystemClock{}
	}
	return &Manager{
		accounts:     accounts,
		acctLedger:   ledger.NewAccountLedger(accounts, clock),
		invoices:     invoices,
		transactions: transactions,
		clock:        clock,
	}
}

// PayRequest carries a payment against an invoice. FromAccountID must name
// a live non-credit-card account; Date, when set, is used as the payment
// timestamp. The offsetting transaction debiting FromAccountID is NOT
// created here.
type PayRequest struct {
	InvoiceID     ledger.InvoiceID
	Amount        decimal.Decimal
	FromAccountID ledger.AccountID
	Date          time.Time
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Get loads a live invoice owned by the user.
func (m *Manager) Get(ctx context.Context, userID ledger.UserID, id ledger.InvoiceID) (*ledger.Invoice, error) {
	inv, err := m.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.Deleted || inv.UserID != userID {
		return nil, ledger.ErrInvoiceNotFound
	}
	return inv, nil
}

// getCard loads a live account owned by the user and verifies it is a
// credit card.
func (m *Manager) getCard(ctx context.Context, userID ledger.UserID, id ledger.AccountID) (*ledger.Account, error) {
	acc, err := m.acctLedger.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !acc.IsCreditCard() {
		return nil, ledger.ErrNotCreditCard
	}
	return acc, nil
}

// ListClosedUnpaid returns the user's Closed and PartiallyPaid invoices.
func (m *Manager) ListClosedUnpaid(ctx context.Context, userID ledger.UserID) ([]*ledger.Invoice, error) {
	return m.invoices.GetClosedUnpaid(ctx, userID)
}

// ListOverdue returns the user's invoices unpaid past their due date.
func (m *Manager) ListOverdue(ctx context.Context, userID ledger.UserID) ([]*ledger.Invoice, error) {
	return m.invoices.GetOverdue(ctx, userID, m.clock.Today())
}

// =============================================================================
// PERIOD RESOLUTION (ledger.InvoiceResolver)
// =============================================================================

// InvoiceForDate returns the invoice bucket a transaction dated `date`
// belongs to, creating it if absent. A bucket whose closing date is already
// past is created directly in status Closed.
func (m *Manager) InvoiceForDate(ctx context.Context, userID ledger.UserID, accountID ledger.AccountID, date ledger.Date) (*ledger.Invoice, error) {
	acc, err := m.getCard(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	target := TargetClosing(date, acc.ClosingDayOrDefault())
	month := target.ReferenceMonth()

	existing, err := m.invoices.GetByReferenceMonth(ctx, acc.ID, month)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	status := ledger.InvoiceOpen
	if target.Before(m.clock.Today()) {
		status = ledger.InvoiceClosed
	}
	inv := m.newInvoice(acc, periodStartAfter(acc, date), target, status)
	if err := m.invoices.Add(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invoice %s for account %s: %w", month, acc.ID, err)
	}
	return inv, nil
}

// =============================================================================
// OPEN INVOICE
// =============================================================================

// OpenInvoice returns the account's currently open invoice, creating one if
// none exists, and repoints the account at it.
func (m *Manager) OpenInvoice(ctx context.Context, userID ledger.UserID, accountID ledger.AccountID) (*ledger.Invoice, error) {
	acc, err := m.getCard(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	if acc.CurrentOpenInvoiceID != "" {
		inv, err := m.invoices.GetByID(ctx, acc.CurrentOpenInvoiceID)
		if err != nil {
			return nil, err
		}
		if inv != nil && !inv.Deleted && inv.Status == ledger.InvoiceOpen {
			return inv, nil
		}
	}

	// Stale or missing pointer: an Open invoice may still exist. Reuse it
	// rather than create a second one - at most one Open per account.
	if inv, err := m.invoices.GetOpenByAccountID(ctx, acc.ID); err != nil {
		return nil, err
	} else if inv != nil {
		if err := m.acctLedger.SetCurrentOpenInvoice(ctx, userID, acc.ID, inv.ID); err != nil {
			return nil, err
		}
		return inv, nil
	}

	today := m.clock.Today()
	inv := m.newInvoice(acc, periodStartAfter(acc, today), TargetClosing(today, acc.ClosingDayOrDefault()), ledger.InvoiceOpen)
	if err := m.invoices.Add(ctx, inv); err != nil {
		return nil, err
	}
	if err := m.acctLedger.SetCurrentOpenInvoice(ctx, userID, acc.ID, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

// =============================================================================
// CLOSING
// =============================================================================

// Close freezes an Open invoice and opens the next cycle. Returns the
// closed invoice. ErrInvoiceNotOpen when the invoice is in any other state.
func (m *Manager) Close(ctx context.Context, userID ledger.UserID, invoiceID ledger.InvoiceID) (*ledger.Invoice, error) {
	inv, err := m.Get(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	acc, err := m.getCard(ctx, userID, inv.AccountID)
	if err != nil {
		return nil, err
	}
	if err := m.closeAndReopen(ctx, acc, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// closeAndReopen runs the recalculate -> close -> open-next sequence shared
// by the manual endpoint and the scheduled batch. The writes are independent
// persistence calls; there is no rollback of earlier steps on failure.
func (m *Manager) closeAndReopen(ctx context.Context, acc *ledger.Account, inv *ledger.Invoice) error {
	if inv.Status != ledger.InvoiceOpen {
		return &ledger.InvoiceStateError{InvoiceID: inv.ID, Status: inv.Status, Operation: "close"}
	}

	// Freeze an up-to-date total.
	total, err := m.sumInvoiceExpenses(ctx, inv.ID)
	if err != nil {
		return fmt.Errorf("recalculate invoice %s: %w", inv.ID, err)
	}
	inv.Recalculate(total)

	now := m.clock.Now()
	inv.Status = ledger.InvoiceClosed
	inv.ClosedAt = now
	inv.UpdatedAt = now
	if err := m.invoices.Update(ctx, inv); err != nil {
		return fmt.Errorf("close invoice %s: %w", inv.ID, err)
	}

	// The next cycle starts the day after the closed period ends, whatever
	// day the close actually ran on.
	nextStart := inv.PeriodEnd.AddDays(1)
	nextEnd := TargetClosing(nextStart, acc.ClosingDayOrDefault())
	next := m.newInvoice(acc, nextStart, nextEnd, ledger.InvoiceOpen)
	if err := m.invoices.Add(ctx, next); err != nil {
		return fmt.Errorf("open next invoice for account %s: %w", acc.ID, err)
	}

	if err := m.acctLedger.SetCurrentOpenInvoice(ctx, acc.UserID, acc.ID, next.ID); err != nil {
		return err
	}
	return m.acctLedger.MarkLastClosed(ctx, acc.UserID, acc.ID, now)
}

// =============================================================================
// PAYMENT
// =============================================================================

// Pay settles an invoice in full. The amount must equal the remaining
// amount exactly; one cent either way is rejected.
func (m *Manager) Pay(ctx context.Context, userID ledger.UserID, req PayRequest) (*ledger.Invoice, error) {
	return m.pay(ctx, userID, req, false)
}

// PayPartial applies a partial payment: 0 < amount <= remaining.
func (m *Manager) PayPartial(ctx context.Context, userID ledger.UserID, req PayRequest) (*ledger.Invoice, error) {
	return m.pay(ctx, userID, req, true)
}

func (m *Manager) pay(ctx context.Context, userID ledger.UserID, req PayRequest, partial bool) (*ledger.Invoice, error) {
	inv, err := m.Get(ctx, userID, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == ledger.InvoicePaid {
		return nil, &ledger.InvoiceStateError{InvoiceID: inv.ID, Status: inv.Status, Operation: "pay"}
	}

	// The paying account must exist and must not itself be a credit card.
	from, err := m.acctLedger.Get(ctx, userID, req.FromAccountID)
	if err != nil {
		return nil, err
	}
	if from.IsCreditCard() {
		return nil, ledger.ErrCreditCardSource
	}

	if partial {
		if req.Amount.LessThanOrEqual(decimal.Zero) || req.Amount.GreaterThan(inv.RemainingAmount) {
			return nil, &ledger.PaymentMismatchError{InvoiceID: inv.ID, Remaining: inv.RemainingAmount, Requested: req.Amount, Partial: true}
		}
	} else if !req.Amount.Equal(inv.RemainingAmount) {
		return nil, &ledger.PaymentMismatchError{InvoiceID: inv.ID, Remaining: inv.RemainingAmount, Requested: req.Amount}
	}

	paidAt := req.Date
	if paidAt.IsZero() {
		paidAt = m.clock.Now()
	}

	inv.PaidAmount = inv.PaidAmount.Add(req.Amount)
	inv.RemainingAmount = inv.TotalAmount.Sub(inv.PaidAmount)
	if inv.RemainingAmount.LessThanOrEqual(decimal.Zero) {
		inv.Status = ledger.InvoicePaid
		inv.PaidAt = paidAt
	} else {
		inv.Status = ledger.InvoicePartiallyPaid
	}
	inv.UpdatedAt = m.clock.Now()

	if err := m.invoices.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("pay invoice %s: %w", inv.ID, err)
	}
	return inv, nil
}

// =============================================================================
// RECALCULATION
// =============================================================================

// Recalculate re-derives the invoice total from its tagged expense
// transactions. Idempotent; the status never changes here, only the total
// and remaining amounts.
func (m *Manager) Recalculate(ctx context.Context, userID ledger.UserID, invoiceID ledger.InvoiceID) (*ledger.Invoice, error) {
	inv, err := m.Get(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	total, err := m.sumInvoiceExpenses(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Recalculate(total)
	inv.UpdatedAt = m.clock.Now()
	if err := m.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// sumInvoiceExpenses totals the live expense transactions tagged to an
// invoice. The repository contract is get-all; filtering happens here.
func (m *Manager) sumInvoiceExpenses(ctx context.Context, invoiceID ledger.InvoiceID) (decimal.Decimal, error) {
	txs, err := m.transactions.GetAll(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, tx := range txs {
		if tx.CountsTowardInvoice(invoiceID) {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

// =============================================================================
// HISTORY MIGRATION
// =============================================================================

// CreateHistoryInvoice creates the one-shot pre-paid HISTORY bucket and
// retroactively tags every untagged transaction on the account dated on or
// before yesterday. A second call is rejected once the bucket exists.
func (m *Manager) CreateHistoryInvoice(ctx context.Context, userID ledger.UserID, accountID ledger.AccountID) (*ledger.Invoice, error) {
	acc, err := m.getCard(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	existing, err := m.invoices.GetByReferenceMonth(ctx, acc.ID, ledger.ReferenceMonthHistory)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ledger.ErrHistoryInvoiceExists
	}

	now := m.clock.Now()
	yesterday := m.clock.Today().AddDays(-1)
	total := acc.Balance.Abs()

	inv := &ledger.Invoice{
		ID:              ledger.InvoiceID(uuid.NewString()),
		AccountID:       acc.ID,
		UserID:          acc.UserID,
		PeriodStart:     historyPeriodStart,
		PeriodEnd:       yesterday,
		DueDate:         yesterday,
		TotalAmount:     total,
		PaidAmount:      total,
		RemainingAmount: decimal.Zero,
		Status:          ledger.InvoicePaid,
		PaidAt:          now,
		ReferenceMonth:  ledger.ReferenceMonthHistory,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := m.invoices.Add(ctx, inv); err != nil {
		return nil, err
	}

	txs, err := m.transactions.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		if tx.AccountID != acc.ID || tx.InvoiceID != "" || tx.Deleted || tx.Date.After(yesterday) {
			continue
		}
		tx.InvoiceID = inv.ID
		tx.UpdatedAt = now
		if err := m.transactions.Update(ctx, tx); err != nil {
			return nil, fmt.Errorf("tag transaction %s to history invoice: %w", tx.ID, err)
		}
	}
	return inv, nil
}

// =============================================================================
// SCHEDULED CLOSURES
// =============================================================================

// ProcessScheduledClosures closes the Open invoice of every live credit
// card whose clamped closing day is today and opens the next cycle for each.
// Per-account failures are logged and do not stop the batch; cards with no
// Open invoice are skipped with a warning rather than auto-created.
// Returns (processed, skipped) counts for the scheduler log. The returned
// error is non-nil only when the account enumeration itself fails - the
// scheduler retries the whole cycle on that.
func (m *Manager) ProcessScheduledClosures(ctx context.Context) (int, int, error) {
	accounts, err := m.accounts.GetAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list accounts for scheduled closures: %w", err)
	}

	today := m.clock.Today()
	processed := 0
	skipped := 0

	for _, acc := range accounts {
		if acc.Deleted || !acc.IsCreditCard() || !ClosesToday(acc, today) {
			continue
		}

		inv, err := m.invoices.GetOpenByAccountID(ctx, acc.ID)
		if err != nil {
			log.Printf("[Closures] Error loading open invoice for account %s: %v", acc.ID, err)
			continue
		}
		if inv == nil {
			log.Printf("[Closures] Warning: account %s closes today but has no open invoice, skipping", acc.ID)
			skipped++
			continue
		}

		if err := m.closeAndReopen(ctx, acc, inv); err != nil {
			log.Printf("[Closures] Error closing invoice %s for account %s: %v", inv.ID, acc.ID, err)
			continue
		}
		processed++
	}

	return processed, skipped, nil
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func (m *Manager) newInvoice(acc *ledger.Account, start, end ledger.Date, status ledger.InvoiceStatus) *ledger.Invoice {
	now := m.clock.Now()
	return &ledger.Invoice{
		ID:              ledger.InvoiceID(uuid.NewString()),
		AccountID:       acc.ID,
		UserID:          acc.UserID,
		PeriodStart:     start,
		PeriodEnd:       end,
		DueDate:         end.AddDays(acc.DueDayOffset),
		TotalAmount:     decimal.Zero,
		PaidAmount:      decimal.Zero,
		RemainingAmount: decimal.Zero,
		Status:          status,
		ReferenceMonth:  end.ReferenceMonth(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
