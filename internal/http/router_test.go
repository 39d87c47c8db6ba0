package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/moneynote/internal/auth"
	"github.com/MrJamesThe3rd/moneynote/internal/export"
	"github.com/MrJamesThe3rd/moneynote/internal/format"
	moneyHttp "github.com/MrJamesThe3rd/moneynote/internal/http"
	exportHandler "github.com/MrJamesThe3rd/moneynote/internal/http/export"
	"github.com/MrJamesThe3rd/moneynote/internal/http/importfile"
	matchingHandler "github.com/MrJamesThe3rd/moneynote/internal/http/matching"
	"github.com/MrJamesThe3rd/moneynote/internal/http/overview"
	txHandler "github.com/MrJamesThe3rd/moneynote/internal/http/transaction"
	"github.com/MrJamesThe3rd/moneynote/internal/importer"
	"github.com/MrJamesThe3rd/moneynote/internal/live"
	"github.com/MrJamesThe3rd/moneynote/internal/matching"
	matchingMem "github.com/MrJamesThe3rd/moneynote/internal/matching/memstore"
	"github.com/MrJamesThe3rd/moneynote/internal/notify"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction/memstore"
)

func newRouter(t *testing.T) (http.Handler, *auth.Tokens) {
	t.Helper()

	tokens, err := auth.NewTokens("test-secret", "moneynote", time.Hour)
	require.NoError(t, err)

	hub := notify.NewHub()
	txSvc := transaction.NewService(memstore.New(), transaction.WithPublisher(hub))
	matchSvc := matching.NewService(matchingMem.New())

	router := moneyHttp.New(tokens, []string{"https://app.example"}, moneyHttp.Handlers{
		Transactions: txHandler.NewHandler(txSvc),
		Overview:     overview.NewHandler(txSvc, live.NewFeed(txSvc, hub, nil), format.English),
		Import:       importfile.NewHandler(importer.NewService(time.UTC), txSvc, matchSvc),
		Categories:   matchingHandler.NewHandler(matchSvc),
		Export:       exportHandler.NewHandler(export.NewService(txSvc)),
	})

	return router, tokens
}

func TestRouter_RequiresToken(t *testing.T) {
	router, tokens := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/overview", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := tokens.Issue("alice", "Alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/",
		strings.NewReader(`{"amount":1500,"type":"expense","description":"Taxi"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/overview", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_balance":-1500`)
}

func TestRouter_HealthAndCORS(t *testing.T) {
	router, _ := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/overview", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
