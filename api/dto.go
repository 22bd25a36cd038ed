/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ON THE WIRE:
  Amounts travel as decimal STRINGS ("123.45"), never floats. The handlers
  parse them with decimal.NewFromString; a client sending 0.1+0.2 style
  float artifacts gets exactly what it sent.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/lgfauth/money-manager/ledger"
)

// =============================================================================
// ACCOUNT TYPES
// =============================================================================

// AccountDTO represents an account in API responses. Balance means money
// held for standard accounts and outstanding debt for credit cards.
type AccountDTO struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Kind                 string `json:"kind"`
	Balance              string `json:"balance"`
	InitialBalance       string `json:"initial_balance"`
	CreditLimit          string `json:"credit_limit,omitempty"`
	ClosingDay           int    `json:"closing_day,omitempty"`
	DueDayOffset         int    `json:"due_day_offset,omitempty"`
	LastClosedAt         string `json:"last_closed_at,omitempty"`
	CurrentOpenInvoiceID string `json:"current_open_invoice_id,omitempty"`
	CreatedAt            string `json:"created_at,omitempty"`
}

// CreateAccountRequest is the request to create an account. The credit-card
// fields are ignored for other kinds.
type CreateAccountRequest struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	InitialBalance string `json:"initial_balance"`
	CreditLimit    string `json:"credit_limit"`
	ClosingDay     int    `json:"closing_day"`
	DueDayOffset   int    `json:"due_day_offset"`
}

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// TransactionDTO represents a transaction in API responses. Amount is the
// stored positive magnitude; the sign of its balance effect is derived from
// kind and account kind.
type TransactionDTO struct {
	ID                   string   `json:"id"`
	AccountID            string   `json:"account_id"`
	CategoryID           string   `json:"category_id,omitempty"`
	Kind                 string   `json:"kind"`
	Amount               string   `json:"amount"`
	Date                 string   `json:"date"`
	Description          string   `json:"description,omitempty"`
	Tags                 []string `json:"tags,omitempty"`
	DestinationAccountID string   `json:"destination_account_id,omitempty"`
	InvoiceID            string   `json:"invoice_id,omitempty"`
	Status               string   `json:"status"`
	CreatedAt            string   `json:"created_at,omitempty"`
}

// CreateTransactionRequest is the request to record a transaction.
// Transfers additionally require destination_account_id.
type CreateTransactionRequest struct {
	AccountID            string   `json:"account_id"`
	CategoryID           string   `json:"category_id"`
	Kind                 string   `json:"kind"`
	Amount               string   `json:"amount"`
	Date                 string   `json:"date"`
	Description          string   `json:"description"`
	Tags                 []string `json:"tags"`
	DestinationAccountID string   `json:"destination_account_id"`
}

// UpdateTransactionRequest carries the full replacement values for an edit.
// The server reverts the original's balance impact and applies the new one.
type UpdateTransactionRequest struct {
	CategoryID  string   `json:"category_id"`
	Kind        string   `json:"kind"`
	Amount      string   `json:"amount"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// =============================================================================
// INVOICE TYPES
// =============================================================================

// InvoiceDTO represents a billing-cycle invoice. Overdue is derived at
// response time from the due date; it is never a stored status.
type InvoiceDTO struct {
	ID              string `json:"id"`
	AccountID       string `json:"account_id"`
	PeriodStart     string `json:"period_start"`
	PeriodEnd       string `json:"period_end"`
	DueDate         string `json:"due_date"`
	TotalAmount     string `json:"total_amount"`
	PaidAmount      string `json:"paid_amount"`
	RemainingAmount string `json:"remaining_amount"`
	Status          string `json:"status"`
	Overdue         bool   `json:"overdue"`
	ReferenceMonth  string `json:"reference_month"`
	ClosedAt        string `json:"closed_at,omitempty"`
	PaidAt          string `json:"paid_at,omitempty"`
}

// PayInvoiceRequest is the request body for full and partial payments.
// Date, when present, is recorded as the payment timestamp.
type PayInvoiceRequest struct {
	Amount        string `json:"amount"`
	FromAccountID string `json:"from_account_id"`
	Date          string `json:"date"`
}

// ClosureRunDTO reports the outcome of a scheduled-closure batch.
type ClosureRunDTO struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toAccountDTO(acc *ledger.Account) AccountDTO {
	dto := AccountDTO{
		ID:             string(acc.ID),
		Name:           acc.Name,
		Kind:           string(acc.Kind),
		Balance:        acc.Balance.String(),
		InitialBalance: acc.InitialBalance.String(),
		CreatedAt:      acc.CreatedAt.Format(time.RFC3339),
	}
	if acc.IsCreditCard() {
		dto.CreditLimit = acc.CreditLimit.String()
		dto.ClosingDay = acc.ClosingDayOrDefault()
		dto.DueDayOffset = acc.DueDayOffset
		dto.CurrentOpenInvoiceID = string(acc.CurrentOpenInvoiceID)
		if !acc.LastClosedAt.IsZero() {
			dto.LastClosedAt = acc.LastClosedAt.Format(time.RFC3339)
		}
	}
	return dto
}

func toTransactionDTO(tx *ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:                   string(tx.ID),
		AccountID:            string(tx.AccountID),
		CategoryID:           tx.CategoryID,
		Kind:                 string(tx.Kind),
		Amount:               tx.Amount.String(),
		Date:                 tx.Date.String(),
		Description:          tx.Description,
		Tags:                 tx.Tags,
		DestinationAccountID: string(tx.DestinationAccountID),
		InvoiceID:            string(tx.InvoiceID),
		Status:               string(tx.Status),
		CreatedAt:            tx.CreatedAt.Format(time.RFC3339),
	}
}

func toInvoiceDTO(inv *ledger.Invoice, today ledger.Date) InvoiceDTO {
	dto := InvoiceDTO{
		ID:              string(inv.ID),
		AccountID:       string(inv.AccountID),
		PeriodStart:     inv.PeriodStart.String(),
		PeriodEnd:       inv.PeriodEnd.String(),
		DueDate:         inv.DueDate.String(),
		TotalAmount:     inv.TotalAmount.String(),
		PaidAmount:      inv.PaidAmount.String(),
		RemainingAmount: inv.RemainingAmount.String(),
		Status:          string(inv.Status),
		Overdue:         inv.IsOverdue(today),
		ReferenceMonth:  inv.ReferenceMonth,
	}
	if !inv.ClosedAt.IsZero() {
		dto.ClosedAt = inv.ClosedAt.Format(time.RFC3339)
	}
	if !inv.PaidAt.IsZero() {
		dto.PaidAt = inv.PaidAt.Format(time.RFC3339)
	}
	return dto
}

func toInvoiceDTOs(invs []*ledger.Invoice, today ledger.Date) []InvoiceDTO {
	dtos := make([]InvoiceDTO, len(invs))
	for i, inv := range invs {
		dtos[i] = toInvoiceDTO(inv, today)
	}
	return dtos
}
