package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/barkeep/internal/config"
	"github.com/MrJamesThe3rd/barkeep/internal/notify"
)

func TestLog_Notify(t *testing.T) {
	var buf bytes.Buffer

	n := notify.NewLog(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, n.Notify(context.Background(), nil, "Delivered 🎉"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "anonymous", entry["recipient"])
	assert.Equal(t, "Delivered 🎉", entry["message"])
}

func TestRedis_Notify(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	ctx := context.Background()

	sub := rdb.Subscribe(ctx, "barkeep:notifications")
	t.Cleanup(func() { sub.Close() })

	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	recipient := uuid.New()
	require.NoError(t, notify.NewRedis(rdb, "barkeep:notifications").Notify(ctx, &recipient, "Ready 🎉"))

	select {
	case msg := <-sub.Channel():
		var got notify.Message
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		require.NotNil(t, got.Recipient)
		assert.Equal(t, recipient, *got.Recipient)
		assert.Equal(t, "Ready 🎉", got.Message)
		assert.False(t, got.SentAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}
}

func TestRedis_NotifyConnectionError(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })

	mr.Close()

	err := notify.NewRedis(rdb, "ch").Notify(context.Background(), nil, "x")
	require.Error(t, err)
}

type fakePublisher struct {
	exchange string
	msg      amqp.Publishing
	err      error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, _ string, _, _ bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.msg = msg

	return f.err
}

func TestAMQP_Notify(t *testing.T) {
	pub := &fakePublisher{}

	require.NoError(t, notify.NewAMQP(pub, "notifications_fanout").Notify(context.Background(), nil, "Shipped 🎉"))

	assert.Equal(t, "notifications_fanout", pub.exchange)
	assert.Equal(t, "application/json", pub.msg.ContentType)

	var got notify.Message
	require.NoError(t, json.Unmarshal(pub.msg.Body, &got))
	assert.Nil(t, got.Recipient)
	assert.Equal(t, "Shipped 🎉", got.Message)
}

func TestAMQP_NotifyError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}

	err := notify.NewAMQP(pub, "x").Notify(context.Background(), nil, "m")
	require.ErrorContains(t, err, "channel closed")
}

func TestNew(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notify.Backend = config.NotifyLog

	n, closeFn, err := notify.New(cfg, nil, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.IsType(t, &notify.Log{}, n)
	assert.NoError(t, closeFn())

	cfg.Notify.Backend = config.NotifyRedis
	_, _, err = notify.New(cfg, nil, slog.New(slog.DiscardHandler))
	require.Error(t, err)

	cfg.Notify.Backend = "pigeon"
	_, _, err = notify.New(cfg, nil, slog.New(slog.DiscardHandler))
	require.Error(t, err)
}
