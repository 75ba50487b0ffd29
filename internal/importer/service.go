package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/barkeep/internal/finance"
	"github.com/MrJamesThe3rd/barkeep/internal/importer/sheet"
)

// Suggester proposes a department for an expense item. An empty result means
// no suggestion.
type Suggester interface {
	Suggest(ctx context.Context, item string) (string, error)
}

type Service struct {
	sheetImporter Importer
	suggester     Suggester
	logger        *slog.Logger
}

func NewService(suggester Suggester, logger *slog.Logger) *Service {
	return &Service{
		sheetImporter: sheet.NewParser(),
		suggester:     suggester,
		logger:        logger,
	}
}

// Import parses r and fills in the department of rows that have none from
// learned mappings. Failed suggestions leave the department empty.
func (s *Service) Import(ctx context.Context, format Format, r io.Reader, submitter string) ([]finance.CreateExpenseParams, error) {
	var importer Importer

	switch format {
	case FormatSheet:
		importer = s.sheetImporter
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	params, err := importer.Parse(r, submitter)
	if err != nil {
		return nil, err
	}

	for i, p := range params {
		if p.Department != "" {
			continue
		}

		dept, err := s.suggester.Suggest(ctx, p.Item)
		if err != nil {
			s.logger.Warn("department suggestion failed", "item", p.Item, "error", err)
			continue
		}

		params[i].Department = dept
	}

	return params, nil
}
