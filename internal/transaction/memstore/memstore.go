// Package memstore keeps transactions in process memory. It backs the
// memory store driver and tests; data is lost on restart.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

type Store struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*transaction.Transaction
	now   func() time.Time

	// importMu serialises import transactions the way the advisory lock does
	// for postgres.
	importMu sync.Mutex
}

func New() *Store {
	return &Store{
		items: make(map[uuid.UUID]*transaction.Transaction),
		now:   time.Now,
	}
}

// Seed stores records as-is, keeping their ids and timestamps. Records
// without an id get one.
func (s *Store) Seed(txs ...*transaction.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range txs {
		c := *tx
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}

		if c.CreatedAt.IsZero() {
			c.CreatedAt = s.now()
		}

		s.items[c.ID] = &c
	}
}

func (s *Store) CreateTransaction(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertLocked(tx)

	return nil
}

func (s *Store) insertLocked(tx *transaction.Transaction) {
	tx.ID = uuid.New()
	tx.CreatedAt = s.now()

	c := *tx
	s.items[c.ID] = &c
}

func (s *Store) GetTransaction(_ context.Context, ownerID string, id uuid.UUID) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.items[id]
	if !ok || tx.OwnerID != ownerID || tx.DeletedAt != nil {
		return nil, transaction.ErrNotFound
	}

	c := *tx

	return &c, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[tx.ID]
	if !ok || cur.OwnerID != tx.OwnerID || cur.DeletedAt != nil {
		return transaction.ErrNotFound
	}

	now := s.now()
	tx.UpdatedAt = &now

	c := *tx
	c.CreatedAt = cur.CreatedAt
	s.items[c.ID] = &c

	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.items[id]
	if !ok || tx.OwnerID != ownerID || tx.DeletedAt != nil {
		return transaction.ErrNotFound
	}

	now := s.now()
	tx.DeletedAt = &now

	return nil
}

func (s *Store) ListTransactions(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*transaction.Transaction

	for _, tx := range s.items {
		if tx.DeletedAt != nil || tx.OwnerID != filter.OwnerID {
			continue
		}

		if filter.StartDate != nil && tx.Date.Before(*filter.StartDate) {
			continue
		}

		if filter.EndDate != nil && tx.Date.After(*filter.EndDate) {
			continue
		}

		c := *tx
		out = append(out, &c)
	}

	// Insertion order, so equal dates keep a stable order between snapshots.
	slices.SortStableFunc(out, func(a, b *transaction.Transaction) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return strings.Compare(a.ID.String(), b.ID.String())
	})

	return out, nil
}

type importTx struct {
	store   *Store
	ownerID string
	pending []*transaction.Transaction
	done    bool
}

func (s *Store) BeginImport(_ context.Context, ownerID string, _, _ time.Time) (transaction.ImportTx, error) {
	s.importMu.Lock()

	return &importTx{store: s, ownerID: ownerID}, nil
}

func (itx *importTx) FindDuplicates(_ context.Context, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
	type key struct {
		Date        string
		Amount      int64
		Type        transaction.Type
		Description string
	}

	keys := make(map[key]struct{}, len(params))
	for _, p := range params {
		keys[key{p.Date.Format(time.DateOnly), p.Amount, p.Type, strings.ToLower(strings.TrimSpace(p.Description))}] = struct{}{}
	}

	itx.store.mu.RLock()
	defer itx.store.mu.RUnlock()

	var out []*transaction.Transaction

	for _, tx := range itx.store.items {
		if tx.DeletedAt != nil || tx.OwnerID != itx.ownerID {
			continue
		}

		k := key{tx.Date.Format(time.DateOnly), tx.Amount, tx.Type, strings.ToLower(strings.TrimSpace(tx.Description))}
		if _, ok := keys[k]; ok {
			c := *tx
			out = append(out, &c)
		}
	}

	return out, nil
}

func (itx *importTx) CreateTransactions(_ context.Context, txs []*transaction.Transaction) error {
	itx.pending = append(itx.pending, txs...)
	return nil
}

func (itx *importTx) Commit() error {
	if itx.done {
		return nil
	}

	itx.store.mu.Lock()
	for _, tx := range itx.pending {
		tx.OwnerID = itx.ownerID
		itx.store.insertLocked(tx)
	}
	itx.store.mu.Unlock()

	itx.finish()

	return nil
}

func (itx *importTx) Rollback() error {
	if itx.done {
		return nil
	}

	itx.pending = nil
	itx.finish()

	return nil
}

func (itx *importTx) finish() {
	itx.done = true
	itx.store.importMu.Unlock()
}
