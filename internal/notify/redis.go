package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis publishes notifications as JSON on a pub/sub channel.
type Redis struct {
	client  *redis.Client
	channel string
}

func NewRedis(client *redis.Client, channel string) *Redis {
	return &Redis{client: client, channel: channel}
}

func (r *Redis) Notify(ctx context.Context, recipient *uuid.UUID, message string) error {
	payload, err := json.Marshal(newMessage(recipient, message))
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing notification: %w", err)
	}

	return nil
}
