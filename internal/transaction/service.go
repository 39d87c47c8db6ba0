package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, ownerID string, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, ownerID string, id uuid.UUID) error

	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	BeginImport(ctx context.Context, ownerID string, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

// Publisher announces that an owner's record set changed.
type Publisher interface {
	Publish(ctx context.Context, ownerID string) error
}

type Service struct {
	repo   Repository
	pub    Publisher
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		now:    time.Now,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	Amount      int64
	Type        Type
	Description string
	Category    string
	Date        time.Time
}

// Patch holds the fields of an update; nil fields are left untouched.
type Patch struct {
	Amount      *int64
	Type        *Type
	Description *string
	Category    *string
	Date        *time.Time
}

type ListFilter struct {
	OwnerID   string
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *Service) Create(ctx context.Context, ownerID string, params CreateParams) (*Transaction, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}

	tx := s.fromParams(ownerID, params)
	if err := validate(tx.Amount, tx.Description, tx.Type); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.publish(ctx, ownerID)

	return tx, nil
}

func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (*Transaction, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}

	tx, err := s.repo.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	Sanitize(tx)

	return tx, nil
}

// List returns the owner's full record set in no particular order.
func (s *Service) List(ctx context.Context, ownerID string) ([]*Transaction, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}

	txs, err := s.repo.ListTransactions(ctx, ListFilter{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}

	for _, tx := range txs {
		Sanitize(tx)
	}

	return txs, nil
}

func (s *Service) Update(ctx context.Context, ownerID string, id uuid.UUID, patch Patch) (*Transaction, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}

	tx, err := s.repo.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	Sanitize(tx)

	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}

	if patch.Type != nil {
		tx.Type = *patch.Type
	}

	if patch.Description != nil {
		tx.Description = strings.TrimSpace(*patch.Description)
	}

	if patch.Category != nil {
		tx.Category = strings.TrimSpace(*patch.Category)
	}

	if patch.Date != nil {
		tx.Date = *patch.Date
	}

	if err := validate(tx.Amount, tx.Description, tx.Type); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.publish(ctx, ownerID)

	return tx, nil
}

func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	if ownerID == "" {
		return ErrUnauthenticated
	}

	if err := s.repo.DeleteTransaction(ctx, ownerID, id); err != nil {
		return err
	}

	s.publish(ctx, ownerID)

	return nil
}

type ImportResult struct {
	Imported  []*Transaction
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

type dupKey struct {
	Date        string
	Amount      int64
	Type        Type
	Description string
}

func keyOf(date time.Time, amount int64, typ Type, description string) dupKey {
	return dupKey{
		Date:        date.Format(time.DateOnly),
		Amount:      amount,
		Type:        typ,
		Description: strings.ToLower(strings.TrimSpace(description)),
	}
}

// ImportBatch stores params unless some of them already exist for the owner,
// in which case nothing is written and the split is returned for review.
func (s *Service) ImportBatch(ctx context.Context, ownerID string, params []CreateParams) (*ImportResult, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}

	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	for i, p := range params {
		if err := validate(p.Amount, p.Description, p.Type); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, ownerID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d.Date, d.Amount, d.Type, d.Description)] = d
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range params {
		existing, found := lookup[keyOf(p.Date, p.Amount, p.Type, p.Description)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	txs := s.paramsToTransactions(ownerID, newParams)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	s.publish(ctx, ownerID)

	return &ImportResult{Imported: txs}, nil
}

// CreateBatch stores params without duplicate detection, e.g. after the user
// confirmed an import with conflicts.
func (s *Service) CreateBatch(ctx context.Context, ownerID string, params []CreateParams) ([]*Transaction, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}

	if len(params) == 0 {
		return nil, nil
	}

	for i, p := range params {
		if err := validate(p.Amount, p.Description, p.Type); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, ownerID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	txs := s.paramsToTransactions(ownerID, params)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	s.publish(ctx, ownerID)

	return txs, nil
}

func (s *Service) publish(ctx context.Context, ownerID string) {
	if s.pub == nil {
		return
	}

	if err := s.pub.Publish(ctx, ownerID); err != nil {
		s.logger.Error("failed to publish change", "owner", ownerID, "error", err)
	}
}

func (s *Service) fromParams(ownerID string, p CreateParams) *Transaction {
	tx := &Transaction{
		OwnerID:     ownerID,
		Amount:      p.Amount,
		Type:        p.Type,
		Description: strings.TrimSpace(p.Description),
		Category:    strings.TrimSpace(p.Category),
		Date:        p.Date,
	}

	if tx.Date.IsZero() {
		tx.Date = s.now()
	}

	if tx.Category == "" {
		tx.Category = DefaultCategory(tx.Type)
	}

	return tx
}

func (s *Service) paramsToTransactions(ownerID string, params []CreateParams) []*Transaction {
	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = s.fromParams(ownerID, p)
	}

	return txs
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}
