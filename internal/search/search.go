// Package search runs one free-text query against several tables at once and
// turns the matches into routable results.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Source is a table searched on one text column.
type Source struct {
	Table  string
	Column string
}

// DefaultSources are searched in this order; results keep it.
var DefaultSources = []Source{
	{Table: "product", Column: "name"},
	{Table: "category", Column: "name"},
	{Table: "order", Column: "status"},
	{Table: "user", Column: "email"},
	{Table: "finance", Column: "submittedby"},
	{Table: "expenses", Column: "item"},
	{Table: "materials", Column: "name"},
}

// Row is a raw match. ID is text because source tables mix integer and uuid keys.
type Row struct {
	ID    string
	Label string
}

type Result struct {
	Table string
	ID    string
	Label string
	Route string
}

type Results struct {
	Query string
	Items []Result

	// Failed lists the tables whose query errored or timed out.
	Failed []string
}

// Querier matches term as a case-insensitive substring of src.Column.
type Querier interface {
	Match(ctx context.Context, src Source, term string) ([]Row, error)
}

type Service struct {
	querier Querier
	sources []Source
	routes  Routes
	timeout time.Duration
	logger  *slog.Logger
}

// NewService searches DefaultSources with DefaultRoutes. Each source query
// gets its own timeout.
func NewService(querier Querier, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		querier: querier,
		sources: DefaultSources,
		routes:  DefaultRoutes,
		timeout: timeout,
		logger:  logger,
	}
}

// WithRoutes replaces the detail path prefix for the given tables.
func (s *Service) WithRoutes(overrides map[string]string) *Service {
	s.routes = s.routes.With(overrides)
	return s
}

// Search queries every source concurrently and waits for all of them.
// A source that fails contributes no rows; Search itself never fails.
func (s *Service) Search(ctx context.Context, query string) Results {
	term := strings.TrimSpace(query)

	res := Results{Query: term, Items: []Result{}}
	if term == "" {
		return res
	}

	rows := make([][]Row, len(s.sources))
	errs := make([]error, len(s.sources))

	var g errgroup.Group

	for i, src := range s.sources {
		g.Go(func() error {
			rows[i], errs[i] = s.match(ctx, src, term)
			return nil
		})
	}

	_ = g.Wait()

	for i, src := range s.sources {
		if errs[i] != nil {
			s.logger.Warn("search source failed", "table", src.Table, "query", term, "error", errs[i])
			res.Failed = append(res.Failed, src.Table)

			continue
		}

		for _, r := range rows[i] {
			res.Items = append(res.Items, Result{
				Table: src.Table,
				ID:    r.ID,
				Label: r.Label,
				Route: s.routes.For(src.Table, r.ID),
			})
		}
	}

	return res
}

func (s *Service) match(ctx context.Context, src Source, term string) (rows []Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("panic searching %s: %v", src.Table, r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.querier.Match(ctx, src, term)
}
