package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMode is how an income record was paid.
type PaymentMode string

const (
	ModeCash        PaymentMode = "Cash"
	ModeBank        PaymentMode = "Bank"
	ModeMobileMoney PaymentMode = "Mobile Money"
)

// PaymentModes lists the accepted modes in display order.
var PaymentModes = []PaymentMode{ModeCash, ModeBank, ModeMobileMoney}

func (m PaymentMode) Valid() bool {
	switch m {
	case ModeCash, ModeBank, ModeMobileMoney:
		return true
	}

	return false
}

// Record is a row of the finance (income) table.
type Record struct {
	ID              int64
	TotalAmount     decimal.Decimal
	AmountPaid      decimal.Decimal
	AmountAvailable decimal.Decimal
	PaymentMode     PaymentMode
	SubmittedBy     string
	CreatedAt       time.Time
}

// Expense is a row of the expenses table.
type Expense struct {
	ID          int64
	Item        string
	AmountSpent decimal.Decimal
	Department  string
	SubmittedBy string
	Date        time.Time
}

type Filter struct {
	SubmittedBy *string
	StartDate   *time.Time
	EndDate     *time.Time
}
