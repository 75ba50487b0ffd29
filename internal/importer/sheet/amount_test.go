package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "1,234.56", want: "1234.56"},
		{in: "1.234,56", want: "1234.56"},
		{in: "12,50", want: "12.5"},
		{in: "12.50", want: "12.5"},
		{in: "1,234", want: "1234"},
		{in: "1,234,567", want: "1234567"},
		{in: "-588,74", want: "-588.74"},
		{in: "(42.00)", want: "-42"},
		{in: "€ 7,00", want: "7"},
		{in: "GH₵ 1,500.25", want: "1500.25"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseAmount(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "n/a", "1.2.3"} {
		_, err := parseAmount(in)
		assert.Error(t, err, in)
	}
}
