package sheet_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/barkeep/internal/importer/sheet"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParser_Cashbook(t *testing.T) {
	csv := `Expense sheet - June 2024
Till;Main bar

Date;Item;Amount;Department
03/06/2024;Ice bags;1.234,50;Bar
04/06/2024;Lemons;12,50;Kitchen
05/06/2024;Napkins;8;
;Total;1.255,00;
`

	params, err := sheet.NewParser().Parse(strings.NewReader(csv), "Cashier")
	require.NoError(t, err)
	require.Len(t, params, 3)

	assert.Equal(t, date(2024, 6, 3), params[0].Date)
	assert.Equal(t, "Ice bags", params[0].Item)
	assert.Equal(t, "1234.5", params[0].AmountSpent.String())
	assert.Equal(t, "Bar", params[0].Department)
	assert.Equal(t, "Cashier", params[0].SubmittedBy)

	assert.Equal(t, "12.5", params[1].AmountSpent.String())
	assert.Equal(t, "", params[2].Department)
}

func TestParser_CommaSeparatedCashbook(t *testing.T) {
	csv := "date, item, amount\n2024-06-03,Syrup,\"1,234.56\"\n2024-06-04,Straws,-3.20\n"

	params, err := sheet.NewParser().Parse(strings.NewReader(csv), "Cashier")
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, "1234.56", params[0].AmountSpent.String())
	assert.Equal(t, "3.2", params[1].AmountSpent.String())
	assert.Equal(t, date(2024, 6, 4), params[1].Date)
}

func TestParser_DaybookSkipsCredits(t *testing.T) {
	csv := `Date;Description;Debit;Credit
01-07-2024;Opening float;;500,00
01-07-2024;Gas refill;45,00;
02-07-2024;Cleaning supplies;19,90;
`

	params, err := sheet.NewParser().Parse(strings.NewReader(csv), "Manager")
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, "Gas refill", params[0].Item)
	assert.Equal(t, "45", params[0].AmountSpent.String())
	assert.Equal(t, "Cleaning supplies", params[1].Item)
	assert.Equal(t, date(2024, 7, 2), params[1].Date)
}

func TestParser_Windows1252(t *testing.T) {
	content := "Date;Item;Amount\n03/06/2024;Crème de menthe;20,00\n"

	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(content))
	require.NoError(t, err)

	params, err := sheet.NewParser().Parse(bytes.NewReader(encoded), "Cashier")
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.Equal(t, "Crème de menthe", params[0].Item)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{
			name:    "UnknownLayout",
			csv:     "When;What;How much\n03/06/2024;Ice;5\n",
			wantErr: "no matching sheet layout",
		},
		{
			name:    "MissingItem",
			csv:     "Date;Item;Amount\n03/06/2024;;5\n",
			wantErr: "row 2: missing item",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sheet.NewParser().Parse(strings.NewReader(tc.csv), "Cashier")
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
