// Package store matches search terms against Postgres tables, returning at
// most a configured number of rows per table (SEARCH_MAX_ROWS).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/MrJamesThe3rd/barkeep/internal/search"
)

type Store struct {
	db      *sql.DB
	maxRows int
}

// New caps each source at maxRows matches, lowest ids first. Zero or less
// returns every match.
func New(db *sql.DB, maxRows int) *Store {
	return &Store{db: db, maxRows: maxRows}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches term literally anywhere in the column.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func (s *Store) matchQuery(src search.Source, term string) (string, []any) {
	table := pgx.Identifier{src.Table}.Sanitize()
	column := pgx.Identifier{src.Column}.Sanitize()

	query := fmt.Sprintf(`
		SELECT id::text, COALESCE(%[2]s::text, '')
		FROM %[1]s
		WHERE %[2]s::text ILIKE $1 ESCAPE '\'
		ORDER BY id ASC`, table, column)

	args := []any{likePattern(term)}

	if s.maxRows > 0 {
		query += `
		LIMIT $2`
		args = append(args, s.maxRows)
	}

	return query, args
}

func (s *Store) Match(ctx context.Context, src search.Source, term string) ([]search.Row, error) {
	query, args := s.matchQuery(src, term)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", src.Table, err)
	}
	defer rows.Close()

	var out []search.Row

	for rows.Next() {
		var r search.Row
		if err := rows.Scan(&r.ID, &r.Label); err != nil {
			return nil, fmt.Errorf("scanning %s match: %w", src.Table, err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s matches: %w", src.Table, err)
	}

	return out, nil
}
