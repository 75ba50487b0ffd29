package finance

import "github.com/shopspring/decimal"

// Distribution is the amount paid per payment mode.
type Distribution struct {
	ByMode map[PaymentMode]decimal.Decimal

	// Unrecognized holds payments whose stored mode is outside PaymentModes.
	// New writes are validated, so only legacy rows end up here.
	Unrecognized decimal.Decimal
}

// Distribute sums AmountPaid per mode. All three modes are always present.
func Distribute(records []*Record) Distribution {
	d := Distribution{
		ByMode:       make(map[PaymentMode]decimal.Decimal, len(PaymentModes)),
		Unrecognized: decimal.Zero,
	}

	for _, m := range PaymentModes {
		d.ByMode[m] = decimal.Zero
	}

	for _, r := range records {
		if !r.PaymentMode.Valid() {
			d.Unrecognized = d.Unrecognized.Add(r.AmountPaid)
			continue
		}

		d.ByMode[r.PaymentMode] = d.ByMode[r.PaymentMode].Add(r.AmountPaid)
	}

	return d
}
