package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/barkeep/internal/finance"
)

type recordResponse struct {
	ID              int64               `json:"id"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	AmountPaid      decimal.Decimal     `json:"amount_paid"`
	AmountAvailable decimal.Decimal     `json:"amount_available"`
	PaymentMode     finance.PaymentMode `json:"payment_mode"`
	SubmittedBy     string              `json:"submitted_by"`
	CreatedAt       time.Time           `json:"created_at"`
}

type expenseResponse struct {
	ID          int64           `json:"id"`
	Item        string          `json:"item"`
	AmountSpent decimal.Decimal `json:"amount_spent"`
	Department  string          `json:"department,omitempty"`
	SubmittedBy string          `json:"submitted_by"`
	Date        time.Time       `json:"date"`
}

type ledgerResponse struct {
	SubmittedBy          string          `json:"submitted_by"`
	TotalAmountPaid      decimal.Decimal `json:"total_amount_paid"`
	TotalAmountAvailable decimal.Decimal `json:"total_amount_available"`
	TotalExpenses        decimal.Decimal `json:"total_expenses"`
	BalanceForward       decimal.Decimal `json:"balance_forward"`
	LastUpdated          *time.Time      `json:"last_updated"`
}

type trendResponse struct {
	Date     string          `json:"date"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

type modeTotal struct {
	Mode   finance.PaymentMode `json:"mode"`
	Amount decimal.Decimal     `json:"amount"`
}

type distributionResponse struct {
	Modes        []modeTotal     `json:"modes"`
	Unrecognized decimal.Decimal `json:"unrecognized"`
}

func toRecordResponse(r *finance.Record) recordResponse {
	return recordResponse{
		ID:              r.ID,
		TotalAmount:     r.TotalAmount,
		AmountPaid:      r.AmountPaid,
		AmountAvailable: r.AmountAvailable,
		PaymentMode:     r.PaymentMode,
		SubmittedBy:     r.SubmittedBy,
		CreatedAt:       r.CreatedAt,
	}
}

func toExpenseResponse(e *finance.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Item:        e.Item,
		AmountSpent: e.AmountSpent,
		Department:  e.Department,
		SubmittedBy: e.SubmittedBy,
		Date:        e.Date,
	}
}
