package store

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/MrJamesThe3rd/barkeep/internal/finance"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, total_amount, amount_paid, amount_available, payment_mode, submittedby, created_at
func scanRecord(s scanner) (*finance.Record, error) {
	var r finance.Record

	var mode string

	if err := s.Scan(
		&r.ID, &r.TotalAmount, &r.AmountPaid, &r.AmountAvailable, &mode, &r.SubmittedBy, &r.CreatedAt,
	); err != nil {
		return nil, err
	}

	r.PaymentMode = finance.PaymentMode(mode)

	return &r, nil
}

// Expected column order: id, item, amount_spent, department, submittedby, date
func scanExpense(s scanner) (*finance.Expense, error) {
	var e finance.Expense

	var department sql.NullString

	if err := s.Scan(&e.ID, &e.Item, &e.AmountSpent, &department, &e.SubmittedBy, &e.Date); err != nil {
		return nil, err
	}

	e.Department = department.String

	return &e, nil
}

const (
	selectRecordColumns  = `id, total_amount, amount_paid, amount_available, payment_mode, submittedby, created_at`
	selectExpenseColumns = `id, item, amount_spent, department, submittedby, date`
)

// whereFilter appends the filter conditions on dateColumn to query.
func whereFilter(query, dateColumn string, filter finance.Filter) (string, []any) {
	var args []any

	argIdx := 1

	if filter.SubmittedBy != nil {
		query += fmt.Sprintf(" AND submittedby = $%d", argIdx)

		args = append(args, *filter.SubmittedBy)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND %s >= $%d", dateColumn, argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND %s <= $%d", dateColumn, argIdx)

		args = append(args, *filter.EndDate)
	}

	return query + " ORDER BY " + dateColumn + " ASC", args
}

func (s *Store) CreateRecord(ctx context.Context, r *finance.Record) error {
	query := `
		INSERT INTO finance (total_amount, amount_paid, amount_available, payment_mode, submittedby, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		r.TotalAmount,
		r.AmountPaid,
		r.AmountAvailable,
		r.PaymentMode,
		r.SubmittedBy,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating finance record: %w", err)
	}

	return nil
}

func (s *Store) CreateExpense(ctx context.Context, e *finance.Expense) error {
	return insertExpense(ctx, s.db, e)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertExpense(ctx context.Context, q queryRower, e *finance.Expense) error {
	query := `
		INSERT INTO expenses (item, amount_spent, department, submittedby, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := q.QueryRowContext(ctx, query,
		e.Item,
		e.AmountSpent,
		e.Department,
		e.SubmittedBy,
		e.Date,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("creating expense: %w", err)
	}

	return nil
}

func (s *Store) ListRecords(ctx context.Context, filter finance.Filter) ([]*finance.Record, error) {
	query, args := whereFilter(`SELECT `+selectRecordColumns+` FROM finance WHERE TRUE`, "created_at", filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing finance records: %w", err)
	}
	defer rows.Close()

	var records []*finance.Record

	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning finance record: %w", err)
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating finance records: %w", err)
	}

	return records, nil
}

func (s *Store) ListExpenses(ctx context.Context, filter finance.Filter) ([]*finance.Expense, error) {
	query, args := whereFilter(`SELECT `+selectExpenseColumns+` FROM expenses WHERE TRUE`, "date", filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*finance.Expense

	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}

		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expenses: %w", err)
	}

	return expenses, nil
}

func importLockKey(minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte("expenses"))
	h.Write([]byte{0})
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

// BeginImport opens a transaction holding an advisory lock on the date range,
// so two uploads of the same sheet cannot both pass duplicate detection.
func (s *Store) BeginImport(ctx context.Context, minDate, maxDate time.Time) (finance.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(minDate, maxDate)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, params []finance.CreateExpenseParams) ([]*finance.Expense, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date        string
		Item        string
		Amount      string
		SubmittedBy string
	}

	minDate := params[0].Date
	maxDate := params[0].Date
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}

		keySet[lookupKey{
			Date:        p.Date.Format(time.DateOnly),
			Item:        p.Item,
			Amount:      p.AmountSpent.String(),
			SubmittedBy: p.SubmittedBy,
		}] = struct{}{}
	}

	query := `SELECT ` + selectExpenseColumns + `
		FROM expenses
		WHERE date >= $1 AND date <= $2
		ORDER BY date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*finance.Expense

	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}

		k := lookupKey{
			Date:        e.Date.Format(time.DateOnly),
			Item:        e.Item,
			Amount:      e.AmountSpent.String(),
			SubmittedBy: e.SubmittedBy,
		}

		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateExpenses(ctx context.Context, expenses []*finance.Expense) error {
	for _, e := range expenses {
		if err := insertExpense(ctx, itx.tx, e); err != nil {
			return err
		}
	}

	return nil
}
