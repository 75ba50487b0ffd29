// Package notify delivers user notifications through a configurable backend.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/barkeep/internal/config"
)

type Notifier interface {
	Notify(ctx context.Context, recipient *uuid.UUID, message string) error
}

// Message is the payload published by the redis and rabbitmq backends.
type Message struct {
	Recipient *uuid.UUID `json:"recipient"`
	Message   string     `json:"message"`
	SentAt    time.Time  `json:"sent_at"`
}

func newMessage(recipient *uuid.UUID, message string) Message {
	return Message{Recipient: recipient, Message: message, SentAt: time.Now().UTC()}
}

// New builds the notifier selected by cfg.Notify.Backend. The returned close
// function releases any broker connection.
func New(cfg *config.Config, rdb *redis.Client, logger *slog.Logger) (Notifier, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Notify.Backend {
	case config.NotifyLog:
		return NewLog(logger), noop, nil
	case config.NotifyRedis:
		if rdb == nil {
			return nil, nil, fmt.Errorf("redis notifier needs a redis client")
		}

		return NewRedis(rdb, cfg.Notify.Channel), noop, nil
	case config.NotifyRabbitMQ:
		a, closeFn, err := DialAMQP(cfg.Notify.AMQPURL, cfg.Notify.Exchange)
		if err != nil {
			return nil, nil, err
		}

		return a, closeFn, nil
	}

	return nil, nil, fmt.Errorf("unknown notify backend %q", cfg.Notify.Backend)
}
