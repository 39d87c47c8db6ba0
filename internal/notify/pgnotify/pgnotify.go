// Package pgnotify shares change signals between processes through postgres
// LISTEN/NOTIFY.
package pgnotify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MrJamesThe3rd/moneynote/internal/notify"
)

// Channel is the postgres notification channel.
const Channel = "moneynote_changes"

const retryDelay = 2 * time.Second

type Bus struct {
	db         *sql.DB
	connString string
	hub        *notify.Hub
	logger     *slog.Logger
}

func New(db *sql.DB, connString string, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bus{
		db:         db,
		connString: connString,
		hub:        notify.NewHub(),
		logger:     logger,
	}
}

func (b *Bus) Publish(ctx context.Context, owner string) error {
	if _, err := b.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", Channel, owner); err != nil {
		return fmt.Errorf("notifying change: %w", err)
	}

	return nil
}

func (b *Bus) Subscribe(owner string) (<-chan struct{}, func()) {
	return b.hub.Subscribe(owner)
}

// Run listens until ctx is done, reconnecting after failures. Local
// subscribers are signalled for every notification received.
func (b *Bus) Run(ctx context.Context) error {
	for {
		err := b.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}

		b.logger.Error("listen connection lost", "error", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retryDelay):
		}
	}
}

func (b *Bus) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, b.connString)
	if err != nil {
		return fmt.Errorf("connecting listener: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
		return fmt.Errorf("listening on %s: %w", Channel, err)
	}

	b.logger.Info("listening for changes", "channel", Channel)

	// Anything sent while disconnected is lost; make every subscriber reload.
	b.hub.PublishAll()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return fmt.Errorf("waiting for notification: %w", err)
		}

		if err := b.hub.Publish(ctx, n.Payload); err != nil {
			b.logger.Error("failed to fan out change", "owner", n.Payload, "error", err)
		}
	}
}
