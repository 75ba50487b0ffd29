package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Publisher is the part of *amqp.Channel the notifier uses.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQP publishes notifications to a fanout exchange.
type AMQP struct {
	ch       Publisher
	exchange string
}

func NewAMQP(ch Publisher, exchange string) *AMQP {
	return &AMQP{ch: ch, exchange: exchange}
}

// DialAMQP connects to the broker and declares the fanout exchange.
func DialAMQP(url, exchange string) (*AMQP, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("opening channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}

	closeFn := func() error {
		ch.Close()
		return conn.Close()
	}

	return NewAMQP(ch, exchange), closeFn, nil
}

func (a *AMQP) Notify(ctx context.Context, recipient *uuid.UUID, message string) error {
	msg := newMessage(recipient, message)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = a.ch.PublishWithContext(ctx, a.exchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    msg.SentAt,
	})
	if err != nil {
		return fmt.Errorf("publishing notification: %w", err)
	}

	return nil
}
