package sheet

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one amount column; the sign is ignored.
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns. Only debits are expenses.
	amountSplit
)

// Profile describes the column layout of one till export. Header names are
// matched case-insensitively.
type Profile struct {
	Name       string
	DateCol    string
	ItemCol    string
	DeptCol    string // optional
	AmountMode amountMode
	AmountCol  string // used when AmountMode == amountSingle
	DebitCol   string // used when AmountMode == amountSplit
	CreditCol  string // used when AmountMode == amountSplit
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.ItemCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles are tried in order during detection.
var profiles = []Profile{
	{
		Name:       "daybook",
		DateCol:    "date",
		ItemCol:    "description",
		DeptCol:    "department",
		AmountMode: amountSplit,
		DebitCol:   "debit",
		CreditCol:  "credit",
	},
	{
		Name:       "cashbook",
		DateCol:    "date",
		ItemCol:    "item",
		DeptCol:    "department",
		AmountMode: amountSingle,
		AmountCol:  "amount",
	},
}
