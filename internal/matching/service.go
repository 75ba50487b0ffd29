// Package matching learns which department an expense item belongs to.
package matching

import (
	"context"
	"strings"

	"github.com/MrJamesThe3rd/barkeep/internal/validate"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=matching
type Repository interface {
	FindDepartment(ctx context.Context, item string) (string, error)
	CreateMapping(ctx context.Context, itemPattern, department string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the department of the longest learned pattern contained in
// item, or an empty string.
func (s *Service) Suggest(ctx context.Context, item string) (string, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return "", nil
	}

	return s.repo.FindDepartment(ctx, item)
}

// Learn remembers that items containing itemPattern belong to department.
func (s *Service) Learn(ctx context.Context, itemPattern, department string) error {
	itemPattern = strings.TrimSpace(itemPattern)
	department = strings.TrimSpace(department)

	if itemPattern == "" || department == "" {
		return validate.Errorf("item pattern and department are required")
	}

	return s.repo.CreateMapping(ctx, itemPattern, department)
}
