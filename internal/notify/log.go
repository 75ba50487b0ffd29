package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Log writes notifications to the application log.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, recipient *uuid.UUID, message string) error {
	to := "anonymous"
	if recipient != nil {
		to = recipient.String()
	}

	l.logger.InfoContext(ctx, "notification", "recipient", to, "message", message)

	return nil
}
