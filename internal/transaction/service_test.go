package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction/memstore"
)

const owner = "user-1"

var fixedNow = time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)

func newService(repo transaction.Repository, pub transaction.Publisher) *transaction.Service {
	opts := []transaction.Option{transaction.WithClock(func() time.Time { return fixedNow })}
	if pub != nil {
		opts = append(opts, transaction.WithPublisher(pub))
	}

	return transaction.NewService(repo, opts...)
}

func TestService_Create(t *testing.T) {
	type args struct {
		owner  string
		params transaction.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository, p *transaction.MockPublisher)
		wantErr   bool
		errIs     error
		check     func(t *testing.T, got *transaction.Transaction)
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{
				owner: owner,
				params: transaction.CreateParams{
					Amount:      1000,
					Type:        transaction.TypeExpense,
					Description: "  Coffee ",
					Date:        time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC),
				},
			},
			setupMock: func(m *transaction.MockRepository, p *transaction.MockPublisher) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						tx.CreatedAt = fixedNow
						return nil
					})
				p.EXPECT().Publish(gomock.Any(), owner).Return(nil)
			},
			check: func(t *testing.T, got *transaction.Transaction) {
				assert.NotEqual(t, uuid.Nil, got.ID)
				assert.Equal(t, owner, got.OwnerID)
				assert.Equal(t, "Coffee", got.Description)
				assert.Equal(t, transaction.DefaultExpenseCategory, got.Category)
			},
		},
		{
			name: "DefaultsDateAndIncomeCategory",
			args: args{
				owner: owner,
				params: transaction.CreateParams{
					Amount:      5000,
					Type:        transaction.TypeIncome,
					Description: "Payday",
				},
			},
			setupMock: func(m *transaction.MockRepository, p *transaction.MockPublisher) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
				p.EXPECT().Publish(gomock.Any(), owner).Return(nil)
			},
			check: func(t *testing.T, got *transaction.Transaction) {
				assert.Equal(t, fixedNow, got.Date)
				assert.Equal(t, transaction.DefaultIncomeCategory, got.Category)
			},
		},
		{
			name: "Unauthenticated",
			args: args{
				params: transaction.CreateParams{Amount: 1, Type: transaction.TypeExpense, Description: "x"},
			},
			wantErr: true,
			errIs:   transaction.ErrUnauthenticated,
		},
		{
			name: "ZeroAmount",
			args: args{
				owner:  owner,
				params: transaction.CreateParams{Type: transaction.TypeExpense, Description: "x"},
			},
			wantErr: true,
			errIs:   transaction.ErrInvalidAmount,
		},
		{
			name: "BlankDescription",
			args: args{
				owner:  owner,
				params: transaction.CreateParams{Amount: 1, Type: transaction.TypeExpense, Description: "   "},
			},
			wantErr: true,
			errIs:   transaction.ErrEmptyDescription,
		},
		{
			name: "UnknownType",
			args: args{
				owner:  owner,
				params: transaction.CreateParams{Amount: 1, Type: "transfer", Description: "x"},
			},
			wantErr: true,
			errIs:   transaction.ErrInvalidType,
		},
		{
			name: "RepoError",
			args: args{
				owner:  owner,
				params: transaction.CreateParams{Amount: 500, Type: transaction.TypeExpense, Description: "x"},
			},
			setupMock: func(m *transaction.MockRepository, _ *transaction.MockPublisher) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			pub := transaction.NewMockPublisher(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, pub)
			}

			svc := newService(repo, pub)
			got, err := svc.Create(context.Background(), tt.args.owner, tt.args.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
				}

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			tt.check(t, got)
		})
	}
}

func TestService_Create_PublishErrorIsNotReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	pub := transaction.NewMockPublisher(ctrl)

	repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
	pub.EXPECT().Publish(gomock.Any(), owner).Return(errors.New("broker down"))

	svc := newService(repo, pub)
	got, err := svc.Create(context.Background(), owner, transaction.CreateParams{
		Amount: 100, Type: transaction.TypeExpense, Description: "Bus",
	})
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestService_List_SanitizesRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	repo.EXPECT().
		ListTransactions(gomock.Any(), transaction.ListFilter{OwnerID: owner}).
		Return([]*transaction.Transaction{
			{ID: uuid.New(), Amount: 100, Type: transaction.TypeIncome, Description: "ok", Date: created},
			{ID: uuid.New(), Amount: -5, Type: "bogus", Description: "", CreatedAt: created},
		}, nil)

	svc := newService(repo, nil)
	got, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "ok", got[0].Description)
	assert.Equal(t, transaction.PlaceholderDescription, got[1].Description)
	assert.Equal(t, int64(0), got[1].Amount)
	assert.Equal(t, transaction.TypeExpense, got[1].Type)
	assert.Equal(t, created, got[1].Date)
}

func TestService_List_Unauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := newService(transaction.NewMockRepository(ctrl), nil)
	_, err := svc.List(context.Background(), "")
	assert.ErrorIs(t, err, transaction.ErrUnauthenticated)
}

func TestService_Update(t *testing.T) {
	id := uuid.New()
	original := func() *transaction.Transaction {
		return &transaction.Transaction{
			ID:          id,
			OwnerID:     owner,
			Amount:      1000,
			Type:        transaction.TypeExpense,
			Description: "Lunch",
			Category:    "General",
			Date:        time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC),
		}
	}

	t.Run("PartialPatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		pub := transaction.NewMockPublisher(ctrl)

		amount := int64(1500)
		desc := "Team lunch"

		repo.EXPECT().GetTransaction(gomock.Any(), owner, id).Return(original(), nil)
		repo.EXPECT().
			UpdateTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
				assert.Equal(t, int64(1500), tx.Amount)
				assert.Equal(t, "Team lunch", tx.Description)
				assert.Equal(t, transaction.TypeExpense, tx.Type)
				assert.Equal(t, "General", tx.Category)
				return nil
			})
		pub.EXPECT().Publish(gomock.Any(), owner).Return(nil)

		svc := newService(repo, pub)
		got, err := svc.Update(context.Background(), owner, id, transaction.Patch{Amount: &amount, Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, original().Date, got.Date)
	})

	t.Run("InvalidPatchIsNotStored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		zero := int64(0)

		repo.EXPECT().GetTransaction(gomock.Any(), owner, id).Return(original(), nil)

		svc := newService(repo, nil)
		_, err := svc.Update(context.Background(), owner, id, transaction.Patch{Amount: &zero})
		assert.ErrorIs(t, err, transaction.ErrInvalidAmount)
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().GetTransaction(gomock.Any(), owner, id).Return(nil, transaction.ErrNotFound)

		svc := newService(repo, nil)
		_, err := svc.Update(context.Background(), owner, id, transaction.Patch{})
		assert.ErrorIs(t, err, transaction.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	pub := transaction.NewMockPublisher(ctrl)
	id := uuid.New()

	repo.EXPECT().DeleteTransaction(gomock.Any(), owner, id).Return(nil)
	pub.EXPECT().Publish(gomock.Any(), owner).Return(nil)

	svc := newService(repo, pub)
	require.NoError(t, svc.Delete(context.Background(), owner, id))
	assert.ErrorIs(t, svc.Delete(context.Background(), "", id), transaction.ErrUnauthenticated)
}

func TestService_ImportBatch_NoConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	pub := transaction.NewMockPublisher(ctrl)
	svc := newService(repo, pub)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []transaction.CreateParams{
		{
			Amount:      1000,
			Type:        transaction.TypeExpense,
			Description: "Coffee",
			Date:        date,
		},
	}

	repo.EXPECT().BeginImport(gomock.Any(), owner, date, date).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return(nil, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)
	pub.EXPECT().Publish(gomock.Any(), owner).Return(nil)

	result, err := svc.ImportBatch(context.Background(), owner, params)
	require.NoError(t, err)
	require.Len(t, result.Imported, 1)
	assert.Equal(t, owner, result.Imported[0].OwnerID)
	assert.Equal(t, transaction.DefaultExpenseCategory, result.Imported[0].Category)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_ImportBatch_WithConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := newService(repo, nil)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []transaction.CreateParams{
		{
			Amount:      1000,
			Type:        transaction.TypeExpense,
			Description: "Coffee",
			Date:        date,
		},
		{
			Amount:      2000,
			Type:        transaction.TypeExpense,
			Description: "Lunch",
			Date:        date,
		},
	}

	existing := &transaction.Transaction{
		ID:          uuid.New(),
		OwnerID:     owner,
		Amount:      1000,
		Type:        transaction.TypeExpense,
		Description: "coffee",
		Date:        date.Add(3 * time.Hour),
	}

	repo.EXPECT().BeginImport(gomock.Any(), owner, date, date).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return([]*transaction.Transaction{existing}, nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), owner, params)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Len(t, result.New, 1)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, params[0], result.Conflicts[0].Incoming)
	assert.Equal(t, existing, result.Conflicts[0].Existing)
}

func TestService_ImportBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := newService(transaction.NewMockRepository(ctrl), nil)

	result, err := svc.ImportBatch(context.Background(), owner, []transaction.CreateParams{})
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_ImportBatch_InvalidRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := newService(transaction.NewMockRepository(ctrl), nil)

	_, err := svc.ImportBatch(context.Background(), owner, []transaction.CreateParams{
		{Amount: 10, Type: transaction.TypeExpense, Description: "ok", Date: fixedNow},
		{Amount: 0, Type: transaction.TypeExpense, Description: "bad", Date: fixedNow},
	})
	assert.ErrorIs(t, err, transaction.ErrInvalidAmount)
	assert.ErrorContains(t, err, "row 2")
}

func TestService_CreateBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := newService(repo, nil)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []transaction.CreateParams{
		{
			Amount:      1000,
			Type:        transaction.TypeExpense,
			Description: "Coffee",
			Date:        date,
		},
	}

	repo.EXPECT().BeginImport(gomock.Any(), owner, date, date).Return(itx, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	txs, err := svc.CreateBatch(context.Background(), owner, params)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, int64(1000), txs[0].Amount)
	assert.Equal(t, transaction.TypeExpense, txs[0].Type)
}

func TestService_GetAndUpdate_SanitizeStoredRecord(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	id := uuid.New()
	created := time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)

	store.Seed(&transaction.Transaction{
		ID:        id,
		OwnerID:   owner,
		Amount:    700,
		Type:      "bogus",
		CreatedAt: created,
	})

	svc := newService(store, nil)

	got, err := svc.Get(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, transaction.PlaceholderDescription, got.Description)
	assert.Equal(t, transaction.TypeExpense, got.Type)
	assert.Equal(t, created, got.Date)

	amount := int64(900)
	updated, err := svc.Update(ctx, owner, id, transaction.Patch{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, int64(900), updated.Amount)
	assert.Equal(t, transaction.PlaceholderDescription, updated.Description)
	assert.Equal(t, transaction.TypeExpense, updated.Type)
}
