package export_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/moneynote/internal/auth"
	"github.com/MrJamesThe3rd/moneynote/internal/export"
	exportHandler "github.com/MrJamesThe3rd/moneynote/internal/http/export"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

type listerFunc func(ctx context.Context, owner string) ([]*transaction.Transaction, error)

func (f listerFunc) List(ctx context.Context, owner string) ([]*transaction.Transaction, error) {
	return f(ctx, owner)
}

func newRouter() http.Handler {
	records := []*transaction.Transaction{
		{OwnerID: "alice", Amount: 5000, Type: transaction.TypeIncome, Description: "Payroll", Category: "Salary",
			Date: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)},
		{OwnerID: "alice", Amount: 1200, Type: transaction.TypeExpense, Description: "Lunch", Category: "Food",
			Date: time.Date(2024, 1, 5, 12, 30, 0, 0, time.UTC)},
	}

	svc := export.NewService(
		listerFunc(func(_ context.Context, owner string) ([]*transaction.Transaction, error) {
			if owner == "" {
				return nil, transaction.ErrUnauthenticated
			}

			return records, nil
		}),
		export.WithLocation(time.UTC),
		export.WithClock(func() time.Time { return time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC) }),
	)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := r.Header.Get("X-User"); user != "" {
				r = r.WithContext(auth.WithUserID(r.Context(), user))
			}

			next.ServeHTTP(w, r)
		})
	})
	r.Route("/export", exportHandler.NewHandler(svc).Routes)

	return r
}

func get(h http.Handler, target, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if user != "" {
		req.Header.Set("X-User", user)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestStatement_DefaultsToCurrentMonth(t *testing.T) {
	rec := get(newRouter(), "/export/", "alice")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Disposition"), "statement_2024-01.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,time,type,description,category,amount,balance_after", lines[0])
	assert.Equal(t, "2024-01-05,12:30,expense,Lunch,Food,1200,3800", lines[2])
}

func TestArchive(t *testing.T) {
	rec := get(newRouter(), "/export/archive?month=2024-01", "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	body := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)

	contents := map[string]string{}

	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)

		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		contents[f.Name] = string(b)
	}

	require.Contains(t, contents, "statement.csv")
	require.Contains(t, contents, "summary.txt")
	assert.Contains(t, contents["summary.txt"], "January 2024")
	assert.Contains(t, contents["summary.txt"], "Total balance: 3,800")
}

func TestExport_Errors(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusBadRequest, get(r, "/export/?month=2024-13", "alice").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/export/summary", "").Code)
}
