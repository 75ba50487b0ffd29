package importer

import (
	"io"

	"github.com/MrJamesThe3rd/barkeep/internal/finance"
)

type Format string

const (
	FormatSheet Format = "sheet"
)

type Importer interface {
	Parse(r io.Reader, submitter string) ([]finance.CreateExpenseParams, error)
}
