package finance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/barkeep/internal/finance"
)

func TestSummarizeLedger(t *testing.T) {
	first := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	latest := time.Date(2024, time.May, 3, 18, 0, 0, 0, time.UTC)

	records := []*finance.Record{
		{AmountPaid: decimal.NewFromInt(60), AmountAvailable: decimal.NewFromInt(300), SubmittedBy: "Cashier", CreatedAt: first},
		{AmountPaid: decimal.NewFromInt(40), AmountAvailable: decimal.NewFromInt(200), SubmittedBy: "Cashier", CreatedAt: latest},
		{AmountPaid: decimal.NewFromInt(999), AmountAvailable: decimal.NewFromInt(999), SubmittedBy: "Manager", CreatedAt: latest.Add(time.Hour)},
	}
	expenses := []*finance.Expense{
		{AmountSpent: decimal.NewFromInt(150), SubmittedBy: "Cashier"},
		{AmountSpent: decimal.NewFromInt(50), SubmittedBy: "Cashier"},
		{AmountSpent: decimal.NewFromInt(1000), SubmittedBy: "Manager"},
	}

	got := finance.SummarizeLedger(records, expenses, "Cashier")

	assert.Equal(t, "100", got.TotalAmountPaid.String())
	assert.Equal(t, "500", got.TotalAmountAvailable.String())
	assert.Equal(t, "200", got.TotalExpenses.String())
	assert.Equal(t, "300", got.BalanceForward.String())
	require.NotNil(t, got.LastUpdated)
	assert.True(t, latest.Equal(*got.LastUpdated))
}

func TestSummarizeLedger_Empty(t *testing.T) {
	got := finance.SummarizeLedger(nil, nil, "Cashier")

	assert.True(t, got.BalanceForward.IsZero())
	assert.True(t, got.TotalAmountPaid.IsZero())
	assert.Nil(t, got.LastUpdated)
}

func TestSummarizeLedger_OverdrawnBalance(t *testing.T) {
	records := []*finance.Record{{AmountAvailable: decimal.NewFromInt(50), SubmittedBy: "Cashier"}}
	expenses := []*finance.Expense{{AmountSpent: decimal.NewFromInt(80), SubmittedBy: "Cashier"}}

	got := finance.SummarizeLedger(records, expenses, "Cashier")

	assert.Equal(t, "-30", got.BalanceForward.String())
}

func TestDistribute(t *testing.T) {
	type testCase struct {
		name             string
		records          []*finance.Record
		want             map[finance.PaymentMode]string
		wantUnrecognized string
	}

	paid := func(mode finance.PaymentMode, amount int64) *finance.Record {
		return &finance.Record{PaymentMode: mode, AmountPaid: decimal.NewFromInt(amount)}
	}

	tests := []testCase{
		{
			name: "SummedPerMode",
			records: []*finance.Record{
				paid(finance.ModeCash, 10),
				paid(finance.ModeCash, 5),
				paid(finance.ModeBank, 20),
				paid("Card", 7),
			},
			want: map[finance.PaymentMode]string{
				finance.ModeCash:        "15",
				finance.ModeBank:        "20",
				finance.ModeMobileMoney: "0",
			},
			wantUnrecognized: "7",
		},
		{
			name: "EmptyStillHasAllModes",
			want: map[finance.PaymentMode]string{
				finance.ModeCash:        "0",
				finance.ModeBank:        "0",
				finance.ModeMobileMoney: "0",
			},
			wantUnrecognized: "0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := finance.Distribute(tc.records)

			modes := make(map[finance.PaymentMode]string, len(got.ByMode))
			for m, v := range got.ByMode {
				modes[m] = v.String()
			}

			assert.Equal(t, tc.want, modes)
			assert.Equal(t, tc.wantUnrecognized, got.Unrecognized.String())
		})
	}
}

func TestPaymentMode_Valid(t *testing.T) {
	assert.True(t, finance.ModeMobileMoney.Valid())
	assert.False(t, finance.PaymentMode("mobile money").Valid())
	assert.False(t, finance.PaymentMode("").Valid())
}
