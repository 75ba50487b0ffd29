package finance

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/barkeep/internal/validate"
)

// Granularity selects how cash-flow entries are bucketed.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return g, nil
	}

	return "", validate.Errorf("unknown granularity %q", s)
}

const (
	dayKeyLayout   = "1/2/2006"
	monthKeyLayout = "Jan"
)

// TrendPoint is one cash-flow bucket.
type TrendPoint struct {
	Date     string
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// bucketKey labels t for the given granularity. Week numbers restart every
// month: days 1-7 are "Week 1", 8-14 "Week 2" and so on.
func bucketKey(t time.Time, g Granularity) string {
	t = t.UTC()

	switch g {
	case GranularityDay:
		return t.Format(dayKeyLayout)
	case GranularityWeek:
		return fmt.Sprintf("Week %d", (t.Day()+6)/7)
	default:
		return t.Format(monthKeyLayout)
	}
}

// ShapeCashFlow sums income (AmountPaid) and expenses (AmountSpent) per bucket.
//
// A bucket present on only one side still yields an entry with the other side
// at zero. Entries are ordered by parsing the key back into a date, which is
// lossy: month keys carry no year, and week keys never parse so they keep
// first-seen order.
func ShapeCashFlow(records []*Record, expenses []*Expense, g Granularity) ([]TrendPoint, error) {
	if _, err := ParseGranularity(string(g)); err != nil {
		return nil, err
	}

	points := make([]TrendPoint, 0)
	index := make(map[string]int)

	at := func(key string) *TrendPoint {
		i, ok := index[key]
		if !ok {
			i = len(points)
			index[key] = i
			points = append(points, TrendPoint{Date: key, Income: decimal.Zero, Expenses: decimal.Zero})
		}

		return &points[i]
	}

	for _, r := range records {
		p := at(bucketKey(r.CreatedAt, g))
		p.Income = p.Income.Add(r.AmountPaid)
	}

	for _, e := range expenses {
		p := at(bucketKey(e.Date, g))
		p.Expenses = p.Expenses.Add(e.AmountSpent)
	}

	slices.SortStableFunc(points, func(a, b TrendPoint) int {
		ta, okA := parseBucketKey(a.Date)
		tb, okB := parseBucketKey(b.Date)

		if !okA || !okB {
			return 0
		}

		return ta.Compare(tb)
	})

	return points, nil
}

func parseBucketKey(key string) (time.Time, bool) {
	for _, layout := range []string{dayKeyLayout, monthKeyLayout} {
		if t, err := time.Parse(layout, key); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
