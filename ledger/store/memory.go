// Package store provides in-memory implementations of the ledger stores.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/lgfauth/money-manager/ledger"
)

// =============================================================================
// MEMORY STORES - In-memory implementations (for testing/dev)
// =============================================================================

// Memory implements AccountStore, TransactionStore, and InvoiceStore with
// maps. Every read hands out a copy so tests cannot mutate stored state by
// accident; every write stores a copy of the argument.
type Memory struct {
	mu           sync.RWMutex
	accounts     map[ledger.AccountID]ledger.Account
	transactions map[ledger.TransactionID]ledger.Transaction
	invoices     map[ledger.InvoiceID]ledger.Invoice
}

func NewMemory() *Memory {
	return &Memory{
		accounts:     make(map[ledger.AccountID]ledger.Account),
		transactions: make(map[ledger.TransactionID]ledger.Transaction),
		invoices:     make(map[ledger.InvoiceID]ledger.Invoice),
	}
}

// =============================================================================
// ACCOUNT STORE
// =============================================================================

func (m *Memory) GetByID(_ context.Context, id ledger.AccountID) (*ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := acc
	return &cp, nil
}

func (m *Memory) Add(_ context.Context, acc *ledger.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[acc.ID] = *acc
	return nil
}

// Update persists the account with an optimistic revision check.
func (m *Memory) Update(_ context.Context, acc *ledger.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.accounts[acc.ID]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	if stored.Revision != acc.Revision {
		return ledger.ErrConcurrentModification
	}
	acc.Revision++
	m.accounts[acc.ID] = *acc
	return nil
}

func (m *Memory) GetAll(_ context.Context) ([]*ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*ledger.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		cp := acc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListByUser(_ context.Context, userID ledger.UserID) ([]*ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*ledger.Account
	for _, acc := range m.accounts {
		if acc.UserID == userID && !acc.Deleted {
			cp := acc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

func (m *Memory) GetTransaction(ctx context.Context, id ledger.TransactionID) (*ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx, ok := m.transactions[id]
	if !ok {
		return nil, nil
	}
	cp := tx
	return &cp, nil
}

func (m *Memory) AddTransaction(_ context.Context, tx *ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[tx.ID] = *tx
	return nil
}

func (m *Memory) UpdateTransaction(_ context.Context, tx *ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[tx.ID]; !ok {
		return ledger.ErrTransactionNotFound
	}
	m.transactions[tx.ID] = *tx
	return nil
}

func (m *Memory) GetAllTransactions(_ context.Context) ([]*ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*ledger.Transaction, 0, len(m.transactions))
	for _, tx := range m.transactions {
		cp := tx
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) ListByAccount(_ context.Context, userID ledger.UserID, accountID ledger.AccountID) ([]*ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*ledger.Transaction
	for _, tx := range m.transactions {
		if tx.UserID == userID && tx.AccountID == accountID && !tx.Deleted {
			cp := tx
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// =============================================================================
// INVOICE STORE
// =============================================================================

func (m *Memory) GetInvoice(_ context.Context, id ledger.InvoiceID) (*ledger.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := inv
	return &cp, nil
}

func (m *Memory) AddInvoice(_ context.Context, inv *ledger.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[inv.ID] = *inv
	return nil
}

func (m *Memory) UpdateInvoice(_ context.Context, inv *ledger.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invoices[inv.ID]; !ok {
		return ledger.ErrInvoiceNotFound
	}
	m.invoices[inv.ID] = *inv
	return nil
}

func (m *Memory) GetByReferenceMonth(_ context.Context, accountID ledger.AccountID, month string) (*ledger.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, inv := range m.invoices {
		if inv.AccountID == accountID && inv.ReferenceMonth == month && !inv.Deleted {
			cp := inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetOpenByAccountID(_ context.Context, accountID ledger.AccountID) (*ledger.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, inv := range m.invoices {
		if inv.AccountID == accountID && inv.Status == ledger.InvoiceOpen && !inv.Deleted {
			cp := inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetClosedUnpaid(_ context.Context, userID ledger.UserID) ([]*ledger.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*ledger.Invoice
	for _, inv := range m.invoices {
		if inv.UserID == userID && !inv.Deleted &&
			(inv.Status == ledger.InvoiceClosed || inv.Status == ledger.InvoicePartiallyPaid) {
			cp := inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (m *Memory) GetOverdue(_ context.Context, userID ledger.UserID, today ledger.Date) ([]*ledger.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*ledger.Invoice
	for _, inv := range m.invoices {
		if inv.UserID == userID && !inv.Deleted {
			cp := inv
			if cp.IsOverdue(today) {
				out = append(out, &cp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

// =============================================================================
// INTERFACE ADAPTERS
// =============================================================================
// One Memory backs all three stores; the adapters disambiguate the method
// sets so the Memory type can keep entity-specific names.

// Accounts exposes the Memory as a ledger.AccountStore.
func (m *Memory) Accounts() ledger.AccountStore { return m }

// Transactions exposes the Memory as a ledger.TransactionStore.
func (m *Memory) Transactions() ledger.TransactionStore { return txAdapter{m} }

// Invoices exposes the Memory as a ledger.InvoiceStore.
func (m *Memory) Invoices() ledger.InvoiceStore { return invAdapter{m} }

type txAdapter struct{ m *Memory }

func (a txAdapter) GetByID(ctx context.Context, id ledger.TransactionID) (*ledger.Transaction, error) {
	return a.m.GetTransaction(ctx, id)
}
func (a txAdapter) Add(ctx context.Context, tx *ledger.Transaction) error {
	return a.m.AddTransaction(ctx, tx)
}
func (a txAdapter) Update(ctx context.Context, tx *ledger.Transaction) error {
	return a.m.UpdateTransaction(ctx, tx)
}
func (a txAdapter) GetAll(ctx context.Context) ([]*ledger.Transaction, error) {
	return a.m.GetAllTransactions(ctx)
}
func (a txAdapter) ListByAccount(ctx context.Context, userID ledger.UserID, accountID ledger.AccountID) ([]*ledger.Transaction, error) {
	return a.m.ListByAccount(ctx, userID, accountID)
}

type invAdapter struct{ m *Memory }

func (a invAdapter) GetByID(ctx context.Context, id ledger.InvoiceID) (*ledger.Invoice, error) {
	return a.m.GetInvoice(ctx, id)
}
func (a invAdapter) Add(ctx context.Context, inv *ledger.Invoice) error {
	return a.m.AddInvoice(ctx, inv)
}
func (a invAdapter) Update(ctx context.Context, inv *ledger.Invoice) error {
	return a.m.UpdateInvoice(ctx, inv)
}
func (a invAdapter) GetByReferenceMonth(ctx context.Context, accountID ledger.AccountID, month string) (*ledger.Invoice, error) {
	return a.m.GetByReferenceMonth(ctx, accountID, month)
}
func (a invAdapter) GetOpenByAccountID(ctx context.Context, accountID ledger.AccountID) (*ledger.Invoice, error) {
	return a.m.GetOpenByAccountID(ctx, accountID)
}
func (a invAdapter) GetClosedUnpaid(ctx context.Context, userID ledger.UserID) ([]*ledger.Invoice, error) {
	return a.m.GetClosedUnpaid(ctx, userID)
}
func (a invAdapter) GetOverdue(ctx context.Context, userID ledger.UserID, today ledger.Date) ([]*ledger.Invoice, error) {
	return a.m.GetOverdue(ctx, userID, today)
}
