package order

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/barkeep/internal/session"
	"github.com/MrJamesThe3rd/barkeep/internal/validate"
)

const (
	// OrdersPath is the cached listing view refreshed after a status change.
	OrdersPath = "/api/v1/orders"

	CelebrationSuffix = " 🎉"
)

// DetailPath returns the cached detail view path of an order.
func DetailPath(id int64) string {
	return fmt.Sprintf("%s/%d", OrdersPath, id)
}

//go:generate mockgen -source=service.go -destination=service_mock.go -package=order
type Repository interface {
	ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	ListCreatedAt(ctx context.Context) ([]time.Time, error)
}

// Notifier delivers a message to a user. A nil recipient means no known user.
type Notifier interface {
	Notify(ctx context.Context, recipient *uuid.UUID, message string) error
}

// ViewInvalidator drops any cached rendering of a route.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, path string) error
}

type Service struct {
	repo     Repository
	notifier Notifier
	views    ViewInvalidator
	logger   *slog.Logger
}

func NewService(repo Repository, notifier Notifier, views ViewInvalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		views:    views,
		logger:   logger,
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	return s.repo.ListOrders(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// UpdateStatus persists status verbatim, then tells the acting user and
// refreshes the cached order views. Nothing is sent if the update fails.
// Notification and cache failures after a successful update are logged only.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if strings.TrimSpace(status) == "" {
		return validate.Errorf("status must not be blank")
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update order %d status: %w", id, err)
	}

	actor := session.Actor(ctx)
	if err := s.notifier.Notify(ctx, actor, status+CelebrationSuffix); err != nil {
		s.logger.Warn("failed to send status notification", "order_id", id, "error", err)
	}

	for _, path := range []string{OrdersPath, DetailPath(id)} {
		if err := s.views.Invalidate(ctx, path); err != nil {
			s.logger.Warn("failed to invalidate view", "path", path, "error", err)
		}
	}

	return nil
}

// MonthlyCounts buckets every order's creation time by month name.
func (s *Service) MonthlyCounts(ctx context.Context) ([]MonthlyBucket, error) {
	times, err := s.repo.ListCreatedAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("list order timestamps: %w", err)
	}

	return BucketByMonth(times), nil
}
