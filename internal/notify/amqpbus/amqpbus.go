// Package amqpbus shares change signals between processes through a fanout
// exchange.
package amqpbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/MrJamesThe3rd/moneynote/internal/notify"
)

const publishTimeout = 5 * time.Second

type Bus struct {
	conn     *amqp091.Connection
	exchange string
	hub      *notify.Hub
	logger   *slog.Logger

	mu      sync.Mutex // amqp channels are not safe for concurrent publishing
	channel *amqp091.Channel
}

func Dial(url, exchange string, logger *slog.Logger) (*Bus, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()

		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Bus{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		hub:      notify.NewHub(),
		logger:   logger,
	}, nil
}

func (b *Bus) Publish(ctx context.Context, owner string) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.channel.PublishWithContext(
		ctx,
		b.exchange, // exchange
		"",         // routing key, ignored by fanout
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType: "text/plain",
			Timestamp:   time.Now(),
			Body:        []byte(owner),
		},
	)
	if err != nil {
		return fmt.Errorf("publish change: %w", err)
	}

	return nil
}

func (b *Bus) Subscribe(owner string) (<-chan struct{}, func()) {
	return b.hub.Subscribe(owner)
}

// Run consumes from a private queue bound to the exchange until ctx is done.
func (b *Bus) Run(ctx context.Context) error {
	channel, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("open consumer channel: %w", err)
	}
	defer channel.Close()

	q, err := channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := channel.QueueBind(q.Name, "", b.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	msgs, err := channel.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	b.logger.InfoContext(ctx, "consuming changes", "exchange", b.exchange, "queue", q.Name)

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			owner := string(delivery.Body)
			if err := b.hub.Publish(ctx, owner); err != nil {
				b.logger.ErrorContext(ctx, "failed to fan out change", "owner", owner, "error", err)
			}
		}
	}
}

func (b *Bus) Close() error {
	if b.channel != nil {
		b.channel.Close()
	}

	if b.conn != nil {
		return b.conn.Close()
	}

	return nil
}
