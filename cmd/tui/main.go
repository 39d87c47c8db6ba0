package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/moneynote/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/moneynote/internal/app"
	"github.com/MrJamesThe3rd/moneynote/internal/auth"
	"github.com/MrJamesThe3rd/moneynote/internal/config"
	"github.com/MrJamesThe3rd/moneynote/internal/live"
	"github.com/MrJamesThe3rd/moneynote/internal/logging"
	"github.com/MrJamesThe3rd/moneynote/internal/navigation"
)

// defaultLogFile keeps log lines off the terminal the program draws on.
const defaultLogFile = "moneynote-tui.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = defaultLogFile
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   logFile,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	slog.SetDefault(logger)

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	prompt, verify, err := verifier(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("change bus stopped", "error", err)
		}
	}()

	session := auth.NewSession()
	history := navigation.NewHistory()
	machine := navigation.New(history)
	defer machine.Stop()

	mailbox := live.NewMailbox()
	watcher := live.NewWatcher(a.Feed, session, mailbox.Put)
	watcher.Start(ctx)
	defer watcher.Stop()

	m := newModel(deps{
		env: view.Env{
			Transactions: a.Transactions,
			Matching:     a.Matching,
			Importer:     a.Importer,
			Export:       a.Export,
			Locale:       a.Locale,
			Location:     a.Location,
		},
		bookOpts: a.BookOptions(),
		session:  session,
		history:  history,
		machine:  machine,
		mailbox:  mailbox,
		owner:    watcher.Owner,
		login:    view.NewLoginModel(cfg.App.Name, prompt, verify),
	})

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

// verifier checks access tokens when a secret is configured. Without one the
// typed text is taken as the user id, which suits a single local user.
func verifier(cfg *config.Config) (string, view.Verifier, error) {
	if cfg.Auth.Secret == "" {
		return "User name", func(s string) (string, error) { return s, nil }, nil
	}

	tokens, err := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return "", nil, err
	}

	return "Access token", func(raw string) (string, error) {
		claims, err := tokens.Verify(strings.TrimSpace(raw))
		if err != nil {
			return "", err
		}

		return claims.Subject, nil
	}, nil
}
