package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindDepartment(ctx context.Context, item string) (string, error) {
	query := `
		SELECT department
		FROM department_mappings
		WHERE $1 ILIKE '%' || item_pattern || '%'
		ORDER BY LENGTH(item_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var department string

	err := s.db.QueryRowContext(ctx, query, item).Scan(&department)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding department: %w", err)
	}

	return department, nil
}

func (s *Store) CreateMapping(ctx context.Context, itemPattern, department string) error {
	query := `
		INSERT INTO department_mappings (item_pattern, department, created_at)
		VALUES ($1, $2, NOW())
	`

	if _, err := s.db.ExecContext(ctx, query, itemPattern, department); err != nil {
		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}
