// Package sheet parses expense sheets exported from the till.
package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/barkeep/internal/encoding"
	"github.com/MrJamesThe3rd/barkeep/internal/finance"
)

// delimiters are tried in order until one yields a known header.
var delimiters = []rune{';', ',', '\t'}

// dateLayouts are day-first, matching the till's regional settings.
var dateLayouts = []string{
	time.DateOnly,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
}

// Parser reads expense sheets and produces expense params. The layout
// (cashbook or daybook) is detected from the header row.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader, submitter string) ([]finance.CreateExpenseParams, error) {
	decoded, err := enc.Detect(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	for _, delim := range delimiters {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true

		rows, err := reader.ReadAll()
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1, submitter)
	}

	return nil, fmt.Errorf("no matching sheet layout found: expected columns for cashbook or daybook")
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows skips rows without a date or amount (totals, blank lines) but
// fails on a dated row with no item.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int, submitter string) ([]finance.CreateExpenseParams, error) {
	deptIdx := -1
	if idx, ok := cols[p.DeptCol]; ok {
		deptIdx = idx
	}

	var params []finance.CreateExpenseParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		date, ok := parseDate(cellValue(row, cols[p.DateCol]))
		if !ok {
			continue
		}

		amount, ok := rowAmount(p, cols, row)
		if !ok {
			continue
		}

		item := cellValue(row, cols[p.ItemCol])
		if item == "" {
			return nil, fmt.Errorf("row %d: missing item", rowNum)
		}

		params = append(params, finance.CreateExpenseParams{
			Item:        item,
			AmountSpent: amount,
			Department:  cellValue(row, deptIdx),
			SubmittedBy: submitter,
			Date:        date,
		})
	}

	return params, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func rowAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, bool) {
	switch p.AmountMode {
	case amountSingle:
		return spent(cellValue(row, cols[p.AmountCol]))
	case amountSplit:
		return spent(cellValue(row, cols[p.DebitCol]))
	}

	return decimal.Zero, false
}

// spent parses a non-zero amount as a positive expense.
func spent(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}

	d, err := parseAmount(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d.Abs(), true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
