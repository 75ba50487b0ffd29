package order_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/barkeep/internal/order"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestBucketByMonth(t *testing.T) {
	tests := []struct {
		name  string
		times []time.Time
		want  []order.MonthlyBucket
	}{
		{
			name:  "YearsMerged",
			times: []time.Time{day(2023, 1, 5), day(2024, 1, 20), day(2023, 3, 1)},
			want:  []order.MonthlyBucket{{Month: "Jan", Count: 2}, {Month: "Mar", Count: 1}},
		},
		{
			name:  "FirstSeenOrder",
			times: []time.Time{day(2024, 11, 2), day(2024, 2, 9), day(2024, 11, 30)},
			want:  []order.MonthlyBucket{{Month: "Nov", Count: 2}, {Month: "Feb", Count: 1}},
		},
		{
			name:  "UsesUTCMonth",
			times: []time.Time{time.Date(2024, 3, 31, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*60*60))},
			want:  []order.MonthlyBucket{{Month: "Apr", Count: 1}},
		},
		{
			name:  "Empty",
			times: nil,
			want:  []order.MonthlyBucket{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, order.BucketByMonth(tt.times))
		})
	}
}
