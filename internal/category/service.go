package category

import (
	"context"
	"strings"

	"github.com/MrJamesThe3rd/barkeep/internal/validate"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=category
type Repository interface {
	ListCategories(ctx context.Context) ([]*Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, id int64, name, slug string) error
	DeleteCategory(ctx context.Context, id int64) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name       string
	ProductIDs []int64
}

func (s *Service) List(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	name, slug, err := nameAndSlug(params.Name)
	if err != nil {
		return nil, err
	}

	c := &Category{Name: name, Slug: slug, ProductIDs: params.ProductIDs}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Update renames a category; the slug follows the new name.
func (s *Service) Update(ctx context.Context, id int64, name string) (*Category, error) {
	name, slug, err := nameAndSlug(name)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCategory(ctx, id, name, slug); err != nil {
		return nil, err
	}

	return s.repo.GetCategory(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

func nameAndSlug(raw string) (string, string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", "", validate.Errorf("category name must not be blank")
	}

	slug := Slugify(name)
	if slug == "" {
		return "", "", validate.Errorf("category name %q has no letters or digits", name)
	}

	return name, slug, nil
}
