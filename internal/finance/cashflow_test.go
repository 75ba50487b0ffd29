package finance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/barkeep/internal/finance"
	"github.com/MrJamesThe3rd/barkeep/internal/validate"
)

type point struct {
	Date     string
	Income   string
	Expenses string
}

func flatten(points []finance.TrendPoint) []point {
	out := make([]point, len(points))
	for i, p := range points {
		out[i] = point{Date: p.Date, Income: p.Income.String(), Expenses: p.Expenses.String()}
	}

	return out
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func income(at time.Time, paid int64) *finance.Record {
	return &finance.Record{AmountPaid: decimal.NewFromInt(paid), CreatedAt: at, PaymentMode: finance.ModeCash}
}

func spent(at time.Time, amount int64) *finance.Expense {
	return &finance.Expense{AmountSpent: decimal.NewFromInt(amount), Date: at}
}

func TestShapeCashFlow(t *testing.T) {
	type testCase struct {
		name        string
		records     []*finance.Record
		expenses    []*finance.Expense
		granularity finance.Granularity
		want        []point
	}

	tests := []testCase{
		{
			name:        "SameMonthMerged",
			records:     []*finance.Record{income(day(2024, time.March, 5), 100)},
			expenses:    []*finance.Expense{spent(day(2024, time.March, 20), 40)},
			granularity: finance.GranularityMonth,
			want:        []point{{Date: "Mar", Income: "100", Expenses: "40"}},
		},
		{
			name:        "OneSidedBucketsZeroFilled",
			records:     []*finance.Record{income(day(2024, time.January, 5), 100)},
			expenses:    []*finance.Expense{spent(day(2024, time.February, 2), 40)},
			granularity: finance.GranularityMonth,
			want: []point{
				{Date: "Jan", Income: "100", Expenses: "0"},
				{Date: "Feb", Income: "0", Expenses: "40"},
			},
		},
		{
			name: "DaysSortedChronologically",
			records: []*finance.Record{
				income(day(2024, time.March, 2), 10),
				income(day(2024, time.March, 2), 15),
			},
			expenses:    []*finance.Expense{spent(day(2024, time.March, 1), 5)},
			granularity: finance.GranularityDay,
			want: []point{
				{Date: "3/1/2024", Income: "0", Expenses: "5"},
				{Date: "3/2/2024", Income: "25", Expenses: "0"},
			},
		},
		{
			name:        "WeeksKeepFirstSeenOrder",
			records:     []*finance.Record{income(day(2024, time.March, 15), 10)},
			expenses:    []*finance.Expense{spent(day(2024, time.March, 1), 5), spent(day(2024, time.March, 7), 5)},
			granularity: finance.GranularityWeek,
			want: []point{
				{Date: "Week 3", Income: "10", Expenses: "0"},
				{Date: "Week 1", Income: "0", Expenses: "10"},
			},
		},
		{
			name:        "Empty",
			granularity: finance.GranularityDay,
			want:        []point{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := finance.ShapeCashFlow(tc.records, tc.expenses, tc.granularity)
			require.NoError(t, err)
			assert.Equal(t, tc.want, flatten(got))
		})
	}
}

func TestShapeCashFlow_UnknownGranularity(t *testing.T) {
	_, err := finance.ShapeCashFlow(nil, nil, "fortnight")
	require.ErrorIs(t, err, validate.ErrInvalidInput)
}

func TestParseGranularity(t *testing.T) {
	g, err := finance.ParseGranularity("week")
	require.NoError(t, err)
	assert.Equal(t, finance.GranularityWeek, g)

	_, err = finance.ParseGranularity("")
	require.ErrorIs(t, err, validate.ErrInvalidInput)
}
