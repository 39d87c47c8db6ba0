// Package app assembles the services both binaries run on from config.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/moneynote/internal/config"
	"github.com/MrJamesThe3rd/moneynote/internal/database"
	"github.com/MrJamesThe3rd/moneynote/internal/export"
	"github.com/MrJamesThe3rd/moneynote/internal/format"
	"github.com/MrJamesThe3rd/moneynote/internal/importer"
	"github.com/MrJamesThe3rd/moneynote/internal/ledger"
	"github.com/MrJamesThe3rd/moneynote/internal/live"
	"github.com/MrJamesThe3rd/moneynote/internal/matching"
	matchingMem "github.com/MrJamesThe3rd/moneynote/internal/matching/memstore"
	matchingStore "github.com/MrJamesThe3rd/moneynote/internal/matching/store"
	"github.com/MrJamesThe3rd/moneynote/internal/notify"
	"github.com/MrJamesThe3rd/moneynote/internal/notify/amqpbus"
	"github.com/MrJamesThe3rd/moneynote/internal/notify/pgnotify"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
	txMem "github.com/MrJamesThe3rd/moneynote/internal/transaction/memstore"
	txStore "github.com/MrJamesThe3rd/moneynote/internal/transaction/store"
)

type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Location *time.Location
	Locale   format.Locale

	Transactions *transaction.Service
	Matching     *matching.Service
	Importer     *importer.Service
	Export       *export.Service
	Feed         *live.Feed

	runners []func(context.Context) error
	closers []func() error
}

// New connects the configured store and change bus. Close releases them.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	locale, err := format.New(cfg.App.Locale)
	if err != nil {
		return nil, fmt.Errorf("loading locale: %w", err)
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Location: loc,
		Locale:   locale,
	}

	var (
		txRepo    transaction.Repository
		matchRepo matching.Repository
		db        *sql.DB
	)

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err = database.New(context.Background(), cfg.ConnectionString(), database.Pool{
			MaxOpen:     cfg.DB.MaxOpenConns,
			MaxIdle:     cfg.DB.MaxIdleConns,
			MaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}

		a.closers = append(a.closers, db.Close)

		if cfg.DB.Migrate {
			if err := database.Migrate(db); err != nil {
				_ = a.Close()
				return nil, err
			}
		}

		txRepo = txStore.New(db)
		matchRepo = matchingStore.New(db)
	default:
		logger.Warn("using in-memory store, records are lost on exit")

		txRepo = txMem.New()
		matchRepo = matchingMem.New()
	}

	bus, err := a.newBus(db)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Transactions = transaction.NewService(txRepo,
		transaction.WithPublisher(bus),
		transaction.WithLogger(logger),
	)
	a.Matching = matching.NewService(matchRepo)
	a.Importer = importer.NewService(loc)
	a.Export = export.NewService(a.Transactions,
		export.WithLocale(locale),
		export.WithLocation(loc),
	)
	a.Feed = live.NewFeed(a.Transactions, bus, logger)

	return a, nil
}

func (a *App) newBus(db *sql.DB) (notify.Bus, error) {
	cfg := a.Config

	switch cfg.Notify.Driver {
	case config.NotifyDriverPostgres:
		bus := pgnotify.New(db, cfg.ConnectionString(), a.Logger)
		a.runners = append(a.runners, bus.Run)

		return bus, nil
	case config.NotifyDriverAMQP:
		bus, err := amqpbus.Dial(cfg.Notify.AMQPURL, cfg.Notify.AMQPExchange, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to broker: %w", err)
		}

		a.runners = append(a.runners, bus.Run)
		a.closers = append(a.closers, bus.Close)

		return bus, nil
	}

	return notify.NewHub(), nil
}

// BookOptions configure ledger books the way the services render them.
func (a *App) BookOptions() []ledger.Option {
	return []ledger.Option{
		ledger.WithLocation(a.Location),
		ledger.WithDayLabeler(a.Locale.DayLabel),
	}
}

// Run keeps the change bus listening until ctx is done.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, run := range a.runners {
		g.Go(func() error { return run(ctx) })
	}

	return g.Wait()
}

func (a *App) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}

	a.closers = nil

	return errors.Join(errs...)
}
