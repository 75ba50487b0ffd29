package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/barkeep/internal/order"
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

// Expected column order: id, status, created_at, user_id
func scanOrder(s scanner) (*order.Order, error) {
	var o order.Order

	var userID uuid.NullUUID

	if err := s.Scan(&o.ID, &o.Status, &o.CreatedAt, &userID); err != nil {
		return nil, err
	}

	if userID.Valid {
		o.UserID = &userID.UUID
	}

	return &o, nil
}

const selectOrderColumns = `o.id, o.status, o.created_at, o.user_id`

func (s *Store) ListOrders(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + ` FROM "order" o WHERE 1 = 1`

	var args []any

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND o.status = $%d", len(args))
	}

	query += " ORDER BY o.created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}

	return orders, nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + ` FROM "order" o WHERE o.id = $1`

	o, err := scanOrder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrNotFound
		}

		return nil, fmt.Errorf("getting order: %w", err)
	}

	items, err := s.listItems(ctx, id)
	if err != nil {
		return nil, err
	}

	o.Items = items

	return o, nil
}

func (s *Store) listItems(ctx context.Context, orderID int64) ([]order.Item, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price
		FROM order_item
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	defer rows.Close()

	var items []order.Item

	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}

		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order items: %w", err)
	}

	return items, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE "order" SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	if n == 0 {
		return order.ErrNotFound
	}

	return nil
}

// listCreatedAtQuery orders by id so callers bucketing in first-seen order
// get the same order on every call.
const listCreatedAtQuery = `SELECT created_at FROM "order" ORDER BY id ASC`

func (s *Store) ListCreatedAt(ctx context.Context) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, listCreatedAtQuery)
	if err != nil {
		return nil, fmt.Errorf("listing order timestamps: %w", err)
	}
	defer rows.Close()

	var times []time.Time

	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning order timestamp: %w", err)
		}

		times = append(times, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order timestamps: %w", err)
	}

	return times, nil
}
