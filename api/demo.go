/*
demo.go - Demo data seeding for testing and demonstrations

PURPOSE:

	Populates the store with a realistic household: a checking account, a
	savings account, and a credit card with a mix of cash and card spending.
	The seed exercises the full pipeline - balance impacts, invoice bucket
	tagging, and a transfer - so the API has something to show immediately.

USAGE VIA API:

	POST /api/demo/seed
	X-User-ID: demo-user

NOTE:

	Seeding does not reset existing data; each call creates fresh accounts.
	Only use in development/demo environments.

SEE ALSO:
  - handlers.go: the endpoints that read this data back
*/
package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/lgfauth/money-manager/ledger"
)

// DemoSeedDTO reports what the seed created.
type DemoSeedDTO struct {
	Accounts     []AccountDTO     `json:"accounts"`
	Transactions []TransactionDTO `json:"transactions"`
}

// SeedDemo populates the store with demo data for the requesting user.
// POST /api/demo/seed
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	checking := h.demoAccount(uid, "Main Checking", ledger.KindChecking, "5000")
	savings := h.demoAccount(uid, "Rainy Day", ledger.KindSavings, "12000")
	card := h.demoAccount(uid, "Visa Gold", ledger.KindCreditCard, "0")
	card.CreditLimit = ledger.MustMoney("8000")
	card.ClosingDay = 15
	card.DueDayOffset = 10

	accounts := []*ledger.Account{checking, savings, card}
	for _, acc := range accounts {
		if err := h.Accounts.Add(ctx, acc); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to seed accounts", err)
			return
		}
	}

	today := h.Clock.Today()
	seeds := []*ledger.Transaction{
		h.demoTransaction(uid, checking.ID, ledger.TxIncome, "4200", today.AddDays(-20), "Salary"),
		h.demoTransaction(uid, checking.ID, ledger.TxExpense, "1350", today.AddDays(-18), "Rent"),
		h.demoTransaction(uid, card.ID, ledger.TxExpense, "86.40", today.AddDays(-12), "Groceries"),
		h.demoTransaction(uid, card.ID, ledger.TxExpense, "42.90", today.AddDays(-5), "Streaming + dining"),
		h.demoTransaction(uid, card.ID, ledger.TxExpense, "310", today.AddDays(-2), "Flight tickets"),
	}
	transfer := h.demoTransaction(uid, checking.ID, ledger.TxTransfer, "500", today.AddDays(-10), "Monthly savings")
	transfer.DestinationAccountID = savings.ID
	seeds = append(seeds, transfer)

	var txDTOs []TransactionDTO
	for _, tx := range seeds {
		if err := h.seedTransaction(ctx, uid, tx); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to seed transactions", err)
			return
		}
		txDTOs = append(txDTOs, toTransactionDTO(tx))
	}

	// Reload the accounts so the response carries the post-impact balances.
	var accDTOs []AccountDTO
	for _, acc := range accounts {
		fresh, err := h.Ledger.Get(ctx, uid, acc.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to reload accounts", err)
			return
		}
		accDTOs = append(accDTOs, toAccountDTO(fresh))
	}

	writeJSON(w, http.StatusCreated, DemoSeedDTO{Accounts: accDTOs, Transactions: txDTOs})
}

func (h *Handler) demoAccount(uid ledger.UserID, name string, kind ledger.AccountKind, balance string) *ledger.Account {
	now := h.Clock.Now()
	amount := ledger.MustMoney(balance)
	return &ledger.Account{
		ID:             ledger.AccountID(uuid.NewString()),
		UserID:         uid,
		Name:           name,
		Kind:           kind,
		Balance:        amount,
		InitialBalance: amount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (h *Handler) demoTransaction(uid ledger.UserID, accID ledger.AccountID, kind ledger.TransactionKind, amount string, date ledger.Date, desc string) *ledger.Transaction {
	now := h.Clock.Now()
	return &ledger.Transaction{
		ID:          ledger.TransactionID(uuid.NewString()),
		UserID:      uid,
		AccountID:   accID,
		Kind:        kind,
		Amount:      ledger.MustMoney(amount),
		Date:        date,
		Description: desc,
		Status:      ledger.TxStatusCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (h *Handler) seedTransaction(ctx context.Context, uid ledger.UserID, tx *ledger.Transaction) error {
	if err := h.Engine.Apply(ctx, uid, tx); err != nil {
		return err
	}
	return h.Transactions.Add(ctx, tx)
}
