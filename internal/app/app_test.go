package app_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/moneynote/internal/app"
	"github.com/MrJamesThe3rd/moneynote/internal/config"
	"github.com/MrJamesThe3rd/moneynote/internal/live"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

func memoryConfig() *config.Config {
	var cfg config.Config
	cfg.App.Locale = "ko"
	cfg.App.Timezone = "UTC"
	cfg.Store.Driver = config.StoreDriverMemory
	cfg.Notify.Driver = config.NotifyDriverLocal

	return &cfg
}

func TestNew_MemoryStoreWiresFeed(t *testing.T) {
	a, err := app.New(memoryConfig(), discardLogger())
	require.NoError(t, err)

	defer a.Close()

	assert.Equal(t, time.UTC, a.Location)
	assert.Equal(t, "오늘", a.Locale.Today())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snaps := make(chan live.Snapshot, 4)
	unsubscribe := a.Feed.Subscribe(ctx, "alice", func(s live.Snapshot) { snaps <- s })

	defer unsubscribe()

	first := <-snaps
	assert.Empty(t, first.Records)

	_, err = a.Transactions.Create(ctx, "alice", transaction.CreateParams{
		Amount:      900,
		Type:        transaction.TypeExpense,
		Description: "Gimbap",
	})
	require.NoError(t, err)

	select {
	case s := <-snaps:
		assert.Len(t, s.Records, 1)
	case <-ctx.Done():
		t.Fatal("no snapshot after create")
	}

	require.NoError(t, a.Run(ctx))
}

func TestNew_BadLocale(t *testing.T) {
	cfg := memoryConfig()
	cfg.App.Locale = "!!"

	_, err := app.New(cfg, discardLogger())
	assert.Error(t, err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
