// Package live pushes full record snapshots to views as the records change.
package live

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/MrJamesThe3rd/moneynote/internal/notify"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

// Loader reads an owner's full record set. transaction.Service is one.
type Loader interface {
	List(ctx context.Context, owner string) ([]*transaction.Transaction, error)
}

// Snapshot is a complete replacement of an owner's records. Seq grows with
// every snapshot produced in the process; a smaller Seq is older.
type Snapshot struct {
	Owner   string
	Seq     uint64
	Records []*transaction.Transaction
	Err     error
}

var seq atomic.Uint64

func nextSeq() uint64 {
	return seq.Add(1)
}

type Feed struct {
	loader Loader
	bus    notify.Bus
	logger *slog.Logger
}

func NewFeed(loader Loader, bus notify.Bus, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}

	return &Feed{loader: loader, bus: bus, logger: logger}
}

// Subscribe delivers a snapshot right away and another after every change
// signal, from a single goroutine. Load errors are logged and delivered as an
// empty snapshot carrying Err. Nothing is delivered after unsubscribe returns
// except possibly one snapshot already being handed over.
func (f *Feed) Subscribe(ctx context.Context, owner string, onSnapshot func(Snapshot)) (unsubscribe func()) {
	ctx, cancel := context.WithCancel(ctx)
	signals, stop := f.bus.Subscribe(owner)

	go func() {
		defer stop()

		f.deliver(ctx, owner, onSnapshot)

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}

				f.deliver(ctx, owner, onSnapshot)
			}
		}
	}()

	return cancel
}

func (f *Feed) deliver(ctx context.Context, owner string, onSnapshot func(Snapshot)) {
	records, err := f.loader.List(ctx, owner)
	if ctx.Err() != nil {
		return
	}

	snap := Snapshot{Owner: owner, Seq: nextSeq()}

	if err != nil {
		f.logger.Error("failed to load snapshot", "owner", owner, "error", err)
		snap.Err = err
	} else {
		snap.Records = records
	}

	onSnapshot(snap)
}
