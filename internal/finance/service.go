package finance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/barkeep/internal/validate"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=finance
type Repository interface {
	CreateRecord(ctx context.Context, r *Record) error
	CreateExpense(ctx context.Context, e *Expense) error
	ListRecords(ctx context.Context, filter Filter) ([]*Record, error)
	ListExpenses(ctx context.Context, filter Filter) ([]*Expense, error)

	BeginImport(ctx context.Context, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateExpenseParams) ([]*Expense, error)
	CreateExpenses(ctx context.Context, expenses []*Expense) error
	Commit() error
	Rollback() error
}

// ViewInvalidator drops any cached rendering of a route.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, path string) error
}

// ViewPaths are the cached finance reads. Every one of them is derived from
// records or expenses, so all are refreshed after any write.
var ViewPaths = []string{
	"/api/v1/finance/records",
	"/api/v1/finance/expenses",
	"/api/v1/finance/ledger",
	"/api/v1/finance/cashflow",
	"/api/v1/finance/payment-methods",
}

type Service struct {
	repo      Repository
	views     ViewInvalidator
	ledgerTag string
	logger    *slog.Logger
}

// NewService builds the finance service. ledgerTag is the submitter whose
// rows make up the ledger summary.
func NewService(repo Repository, views ViewInvalidator, ledgerTag string, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		views:     views,
		ledgerTag: ledgerTag,
		logger:    logger,
	}
}

// refreshViews runs after a committed write. Failures are logged only.
func (s *Service) refreshViews(ctx context.Context) {
	for _, path := range ViewPaths {
		if err := s.views.Invalidate(ctx, path); err != nil {
			s.logger.Warn("failed to invalidate view", "path", path, "error", err)
		}
	}
}

type CreateRecordParams struct {
	TotalAmount     decimal.Decimal
	AmountPaid      decimal.Decimal
	AmountAvailable decimal.Decimal
	PaymentMode     PaymentMode `validate:"oneof=Cash Bank 'Mobile Money'"`
	SubmittedBy     string      `validate:"required"`
}

type CreateExpenseParams struct {
	Item        string `validate:"required"`
	AmountSpent decimal.Decimal
	Department  string
	SubmittedBy string    `validate:"required"`
	Date        time.Time `validate:"required"`
}

func (p CreateRecordParams) validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.TotalAmount.IsNegative() || p.AmountPaid.IsNegative() || p.AmountAvailable.IsNegative() {
		return validate.Errorf("amounts must not be negative")
	}

	return nil
}

func (p CreateExpenseParams) validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.AmountSpent.IsNegative() {
		return validate.Errorf("amount spent must not be negative")
	}

	return nil
}

func (s *Service) CreateRecord(ctx context.Context, params CreateRecordParams) (*Record, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	r := &Record{
		TotalAmount:     params.TotalAmount,
		AmountPaid:      params.AmountPaid,
		AmountAvailable: params.AmountAvailable,
		PaymentMode:     params.PaymentMode,
		SubmittedBy:     params.SubmittedBy,
	}
	if err := s.repo.CreateRecord(ctx, r); err != nil {
		return nil, err
	}

	s.refreshViews(ctx)

	return r, nil
}

func (s *Service) CreateExpense(ctx context.Context, params CreateExpenseParams) (*Expense, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	e := paramsToExpenses([]CreateExpenseParams{params})[0]
	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return nil, err
	}

	s.refreshViews(ctx)

	return e, nil
}

func (s *Service) ListRecords(ctx context.Context, filter Filter) ([]*Record, error) {
	return s.repo.ListRecords(ctx, filter)
}

func (s *Service) ListExpenses(ctx context.Context, filter Filter) ([]*Expense, error) {
	return s.repo.ListExpenses(ctx, filter)
}

// CashFlow loads income and expenses within filter and buckets them.
func (s *Service) CashFlow(ctx context.Context, g Granularity, filter Filter) ([]TrendPoint, error) {
	if _, err := ParseGranularity(string(g)); err != nil {
		return nil, err
	}

	records, err := s.repo.ListRecords(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	expenses, err := s.repo.ListExpenses(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	return ShapeCashFlow(records, expenses, g)
}

func (s *Service) PaymentDistribution(ctx context.Context, filter Filter) (Distribution, error) {
	records, err := s.repo.ListRecords(ctx, filter)
	if err != nil {
		return Distribution{}, fmt.Errorf("list records: %w", err)
	}

	return Distribute(records), nil
}

// Ledger summarizes the configured submitter's rows. Any SubmittedBy in
// filter is replaced.
func (s *Service) Ledger(ctx context.Context, filter Filter) (LedgerSummary, error) {
	filter.SubmittedBy = &s.ledgerTag

	records, err := s.repo.ListRecords(ctx, filter)
	if err != nil {
		return LedgerSummary{}, fmt.Errorf("list records: %w", err)
	}

	expenses, err := s.repo.ListExpenses(ctx, filter)
	if err != nil {
		return LedgerSummary{}, fmt.Errorf("list expenses: %w", err)
	}

	return SummarizeLedger(records, expenses, s.ledgerTag), nil
}

// LedgerTag is the submitter the ledger is computed for.
func (s *Service) LedgerTag() string {
	return s.ledgerTag
}

type ImportResult struct {
	Imported  []*Expense
	New       []CreateExpenseParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateExpenseParams
	Existing *Expense
}

type dupKey struct {
	Date        string
	Item        string
	Amount      string
	SubmittedBy string
}

func expenseKey(date time.Time, item string, amount decimal.Decimal, by string) dupKey {
	return dupKey{
		Date:        date.Format(time.DateOnly),
		Item:        item,
		Amount:      amount.String(),
		SubmittedBy: by,
	}
}

// ImportExpenses inserts a parsed expense sheet. When any row already exists
// (same date, item, amount and submitter) nothing is written and the result
// lists the conflicts so the caller can confirm with CreateExpenses.
func (s *Service) ImportExpenses(ctx context.Context, params []CreateExpenseParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	for i, p := range params {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Expense, len(duplicates))
	for _, d := range duplicates {
		lookup[expenseKey(d.Date, d.Item, d.AmountSpent, d.SubmittedBy)] = d
	}

	var newParams []CreateExpenseParams

	var conflicts []Conflict

	for _, p := range params {
		existing, found := lookup[expenseKey(p.Date, p.Item, p.AmountSpent, p.SubmittedBy)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	expenses := paramsToExpenses(newParams)
	if err := itx.CreateExpenses(ctx, expenses); err != nil {
		return nil, fmt.Errorf("create expenses: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	s.refreshViews(ctx)

	return &ImportResult{Imported: expenses}, nil
}

// CreateExpenses inserts params without duplicate detection.
func (s *Service) CreateExpenses(ctx context.Context, params []CreateExpenseParams) ([]*Expense, error) {
	if len(params) == 0 {
		return nil, nil
	}

	for i, p := range params {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	expenses := paramsToExpenses(params)
	if err := itx.CreateExpenses(ctx, expenses); err != nil {
		return nil, fmt.Errorf("create expenses: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	s.refreshViews(ctx)

	return expenses, nil
}

func dateRange(params []CreateExpenseParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func paramsToExpenses(params []CreateExpenseParams) []*Expense {
	expenses := make([]*Expense, len(params))
	for i, p := range params {
		expenses[i] = &Expense{
			Item:        p.Item,
			AmountSpent: p.AmountSpent,
			Department:  p.Department,
			SubmittedBy: p.SubmittedBy,
			Date:        p.Date,
		}
	}

	return expenses
}
