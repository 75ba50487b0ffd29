package finance

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerSummary reports the cash position of one submitter.
type LedgerSummary struct {
	TotalAmountPaid      decimal.Decimal
	TotalAmountAvailable decimal.Decimal
	TotalExpenses        decimal.Decimal
	BalanceForward       decimal.Decimal
	LastUpdated          *time.Time
}

// SummarizeLedger totals the rows submitted under tag; other rows are ignored.
// BalanceForward is available minus spent.
func SummarizeLedger(records []*Record, expenses []*Expense, tag string) LedgerSummary {
	s := LedgerSummary{
		TotalAmountPaid:      decimal.Zero,
		TotalAmountAvailable: decimal.Zero,
		TotalExpenses:        decimal.Zero,
	}

	var own []*Record

	for _, r := range records {
		if r.SubmittedBy != tag {
			continue
		}

		own = append(own, r)
		s.TotalAmountPaid = s.TotalAmountPaid.Add(r.AmountPaid)
		s.TotalAmountAvailable = s.TotalAmountAvailable.Add(r.AmountAvailable)
	}

	for _, e := range expenses {
		if e.SubmittedBy != tag {
			continue
		}

		s.TotalExpenses = s.TotalExpenses.Add(e.AmountSpent)
	}

	s.BalanceForward = s.TotalAmountAvailable.Sub(s.TotalExpenses)

	if len(own) > 0 {
		slices.SortFunc(own, func(a, b *Record) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})

		s.LastUpdated = &own[0].CreatedAt
	}

	return s
}
