package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/barkeep/internal/category"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListCategories(ctx context.Context) ([]*category.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug, created_at FROM category ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []*category.Category

	byID := make(map[int64]*category.Category)

	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		categories = append(categories, &c)
		byID[c.ID] = &c
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	links, err := s.db.QueryContext(ctx,
		`SELECT id, category_id FROM product WHERE category_id IS NOT NULL ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing category products: %w", err)
	}
	defer links.Close()

	for links.Next() {
		var productID, categoryID int64
		if err := links.Scan(&productID, &categoryID); err != nil {
			return nil, fmt.Errorf("scanning category product: %w", err)
		}

		if c, ok := byID[categoryID]; ok {
			c.ProductIDs = append(c.ProductIDs, productID)
		}
	}

	if err := links.Err(); err != nil {
		return nil, fmt.Errorf("iterating category products: %w", err)
	}

	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*category.Category, error) {
	var c category.Category

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at FROM category WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrNotFound
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM product WHERE category_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("listing category products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		if err := rows.Scan(&productID); err != nil {
			return nil, fmt.Errorf("scanning category product: %w", err)
		}

		c.ProductIDs = append(c.ProductIDs, productID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category products: %w", err)
	}

	return &c, nil
}

// CreateCategory inserts the category and points its products at it in one transaction.
func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO category (name, slug, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`
	if err := dbTx.QueryRowContext(ctx, query, c.Name, c.Slug).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("creating category: %w", err)
	}

	if len(c.ProductIDs) > 0 {
		if _, err := dbTx.ExecContext(ctx,
			`UPDATE product SET category_id = $1 WHERE id = ANY($2)`, c.ID, c.ProductIDs,
		); err != nil {
			return fmt.Errorf("assigning products: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, name, slug string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE category SET name = $1, slug = $2 WHERE id = $3`, name, slug, id)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}

	return expectOneRow(res)
}

// DeleteCategory detaches the category's products before removing it.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `UPDATE product SET category_id = NULL WHERE category_id = $1`, id); err != nil {
		return fmt.Errorf("detaching products: %w", err)
	}

	res, err := dbTx.ExecContext(ctx, `DELETE FROM category WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	if err := expectOneRow(res); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return category.ErrNotFound
	}

	return nil
}
