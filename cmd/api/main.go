package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/moneynote/internal/app"
	"github.com/MrJamesThe3rd/moneynote/internal/auth"
	"github.com/MrJamesThe3rd/moneynote/internal/config"
	moneyHttp "github.com/MrJamesThe3rd/moneynote/internal/http"
	exportHandler "github.com/MrJamesThe3rd/moneynote/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/moneynote/internal/http/importfile"
	matchingHandler "github.com/MrJamesThe3rd/moneynote/internal/http/matching"
	overviewHandler "github.com/MrJamesThe3rd/moneynote/internal/http/overview"
	txHandler "github.com/MrJamesThe3rd/moneynote/internal/http/transaction"
	"github.com/MrJamesThe3rd/moneynote/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	slog.SetDefault(logger)

	tokens, err := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	bookOpts := a.BookOptions()

	router := moneyHttp.New(tokens, cfg.Server.CORSOrigins, moneyHttp.Handlers{
		Transactions: txHandler.NewHandler(a.Transactions, bookOpts...),
		Overview:     overviewHandler.NewHandler(a.Transactions, a.Feed, a.Locale, bookOpts...),
		Import:       importHandler.NewHandler(a.Importer, a.Transactions, a.Matching),
		Categories:   matchingHandler.NewHandler(a.Matching),
		Export:       exportHandler.NewHandler(a.Export),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	srv := newServer(ctx, fmt.Sprintf(":%d", cfg.App.Port), router, cfg.Server.Timeout)

	g.Go(func() error {
		return a.Run(ctx)
	})

	g.Go(func() error {
		logger.Info("starting server", "addr", srv.Addr, "store", cfg.Store.Driver, "notify", cfg.Notify.Driver)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newServer derives request contexts from ctx; open event streams end once
// ctx is done.
func newServer(ctx context.Context, addr string, h http.Handler, timeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: timeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}
