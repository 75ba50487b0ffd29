package sheet

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads an amount written either as "1,234.56" or "1.234,56".
// When both separators appear the last one is the decimal mark. A lone comma
// followed by exactly three digits is a thousands separator, otherwise it is
// the decimal mark. Currency symbols and spaces are ignored and a value in
// parentheses is negative.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)

	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")

	var b strings.Builder

	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-':
			negative = true
		}
	}

	clean := b.String()
	if clean == "" {
		return decimal.Zero, fmt.Errorf("no digits in amount %q", s)
	}

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case lastDot >= 0 && lastComma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma >= 0:
		if strings.Count(clean, ",") == 1 && len(clean)-lastComma-1 != 3 {
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}

	if negative {
		d = d.Neg()
	}

	return d, nil
}
