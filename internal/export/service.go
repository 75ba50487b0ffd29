// Package export produces a downloadable ledger for a date range.
package export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/barkeep/internal/finance"
)

const (
	KindIncome  = "income"
	KindExpense = "expense"
)

// Source is the part of the finance service the export reads from.
type Source interface {
	ListRecords(ctx context.Context, filter finance.Filter) ([]*finance.Record, error)
	ListExpenses(ctx context.Context, filter finance.Filter) ([]*finance.Expense, error)
	Ledger(ctx context.Context, filter finance.Filter) (finance.LedgerSummary, error)
	LedgerTag() string
}

// Entry is one line of the exported ledger.
type Entry struct {
	Date        time.Time
	Kind        string
	Description string
	Department  string
	PaymentMode finance.PaymentMode
	SubmittedBy string
	Amount      decimal.Decimal
}

type Report struct {
	Start   *time.Time
	End     *time.Time
	Tag     string
	Entries []Entry
	Summary finance.LedgerSummary
}

type Service struct {
	finance Source
}

func NewService(source Source) *Service {
	return &Service{finance: source}
}

// Export collects income and expenses in the filter's range, oldest first,
// with the ledger summary for the same range.
func (s *Service) Export(ctx context.Context, filter finance.Filter) (*Report, error) {
	records, err := s.finance.ListRecords(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	expenses, err := s.finance.ListExpenses(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	summary, err := s.finance.Ledger(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ledger summary: %w", err)
	}

	entries := make([]Entry, 0, len(records)+len(expenses))

	for _, r := range records {
		entries = append(entries, Entry{
			Date:        r.CreatedAt,
			Kind:        KindIncome,
			Description: "Sales",
			PaymentMode: r.PaymentMode,
			SubmittedBy: r.SubmittedBy,
			Amount:      r.AmountPaid,
		})
	}

	for _, e := range expenses {
		entries = append(entries, Entry{
			Date:        e.Date,
			Kind:        KindExpense,
			Description: e.Item,
			Department:  e.Department,
			SubmittedBy: e.SubmittedBy,
			Amount:      e.AmountSpent,
		})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return a.Date.Compare(b.Date)
	})

	return &Report{
		Start:   filter.StartDate,
		End:     filter.EndDate,
		Tag:     s.finance.LedgerTag(),
		Entries: entries,
		Summary: summary,
	}, nil
}

var csvHeader = []string{"date", "kind", "description", "department", "payment_mode", "submitted_by", "amount"}

func (s *Service) WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range entries {
		amount := e.Amount.StringFixed(2)
		if e.Kind == KindExpense {
			amount = e.Amount.Neg().StringFixed(2)
		}

		if err := cw.Write([]string{
			e.Date.Format(time.DateOnly),
			e.Kind,
			e.Description,
			e.Department,
			string(e.PaymentMode),
			e.SubmittedBy,
			amount,
		}); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// Summary renders the report's ledger summary as plain text.
func (s *Service) Summary(report *Report) string {
	var sb strings.Builder

	from, to := "beginning", "today"
	if report.Start != nil {
		from = report.Start.Format(time.DateOnly)
	}

	if report.End != nil {
		to = report.End.Format(time.DateOnly)
	}

	fmt.Fprintf(&sb, "Ledger for %s, %s to %s\n\n", report.Tag, from, to)
	fmt.Fprintf(&sb, "Amount paid:      %s\n", report.Summary.TotalAmountPaid.StringFixed(2))
	fmt.Fprintf(&sb, "Amount available: %s\n", report.Summary.TotalAmountAvailable.StringFixed(2))
	fmt.Fprintf(&sb, "Expenses:         %s\n", report.Summary.TotalExpenses.StringFixed(2))
	fmt.Fprintf(&sb, "Balance forward:  %s\n", report.Summary.BalanceForward.StringFixed(2))

	if report.Summary.LastUpdated != nil {
		fmt.Fprintf(&sb, "Last updated:     %s\n", report.Summary.LastUpdated.UTC().Format(time.RFC3339))
	}

	fmt.Fprintf(&sb, "\n%d entries\n", len(report.Entries))

	return sb.String()
}

// WriteZip writes ledger.csv and summary.txt into a zip archive.
func (s *Service) WriteZip(w io.Writer, report *Report) error {
	zw := zip.NewWriter(w)

	f, err := zw.Create("ledger.csv")
	if err != nil {
		return fmt.Errorf("creating ledger.csv: %w", err)
	}

	if err := s.WriteCSV(f, report.Entries); err != nil {
		return fmt.Errorf("writing ledger.csv: %w", err)
	}

	f, err = zw.Create("summary.txt")
	if err != nil {
		return fmt.Errorf("creating summary.txt: %w", err)
	}

	if _, err := io.WriteString(f, s.Summary(report)); err != nil {
		return fmt.Errorf("writing summary.txt: %w", err)
	}

	return zw.Close()
}
