package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/moneynote/internal/auth"
)

var issuedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTokens(t *testing.T, now time.Time) *auth.Tokens {
	t.Helper()

	tokens, err := auth.NewTokens("s3cret", "moneynote", time.Hour, auth.WithTokenClock(func() time.Time { return now }))
	require.NoError(t, err)

	return tokens
}

func TestNewTokens_MissingSecret(t *testing.T) {
	_, err := auth.NewTokens("", "moneynote", time.Hour)
	assert.ErrorIs(t, err, auth.ErrMissingSecret)
}

func TestTokens_Verify(t *testing.T) {
	raw, err := newTokens(t, issuedAt).Issue("user-1", "Alice")
	require.NoError(t, err)

	tests := []struct {
		name    string
		tokens  *auth.Tokens
		raw     string
		wantErr bool
	}{
		{name: "Valid", tokens: newTokens(t, issuedAt.Add(time.Minute)), raw: raw},
		{name: "Expired", tokens: newTokens(t, issuedAt.Add(2*time.Hour)), raw: raw, wantErr: true},
		{name: "Garbage", tokens: newTokens(t, issuedAt), raw: "not-a-token", wantErr: true},
		{name: "OtherIssuer", tokens: func() *auth.Tokens {
			tk, err := auth.NewTokens("s3cret", "someone-else", time.Hour, auth.WithTokenClock(func() time.Time { return issuedAt }))
			require.NoError(t, err)

			return tk
		}(), raw: raw, wantErr: true},
		{name: "OtherSecret", tokens: func() *auth.Tokens {
			tk, err := auth.NewTokens("different", "moneynote", time.Hour, auth.WithTokenClock(func() time.Time { return issuedAt }))
			require.NoError(t, err)

			return tk
		}(), raw: raw, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tt.tokens.Verify(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrInvalidToken)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "user-1", claims.Subject)
			assert.Equal(t, "Alice", claims.Name)
		})
	}
}

func TestMiddleware(t *testing.T) {
	tokens := newTokens(t, issuedAt)
	raw, err := tokens.Issue("user-1", "")
	require.NoError(t, err)

	var seen string
	h := auth.Middleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.UserID(r.Context())
	}))

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantUser   string
	}{
		{name: "Bearer", header: "Bearer " + raw, wantStatus: http.StatusOK, wantUser: "user-1"},
		{name: "QueryParam", query: "?access_token=" + raw, wantStatus: http.StatusOK, wantUser: "user-1"},
		{name: "Missing", wantStatus: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Basic " + raw, wantStatus: http.StatusUnauthorized},
		{name: "Invalid", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""

			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, seen)
		})
	}
}

func TestSession(t *testing.T) {
	s := auth.NewSession()

	var changes []string
	cancel := s.OnChange(func(id string) { changes = append(changes, id) })

	_, ok := s.Current()
	assert.False(t, ok)

	s.SignIn("alice")
	s.SignIn("alice")
	s.SignIn("bob")
	s.SignOut()

	assert.Equal(t, []string{"alice", "bob", ""}, changes)

	cancel()
	s.SignIn("carol")
	assert.Len(t, changes, 3)

	id, ok := s.Current()
	assert.True(t, ok)
	assert.Equal(t, "carol", id)
}
