// Package respond writes JSON bodies and maps domain errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/moneynote/internal/importer"
	"github.com/MrJamesThe3rd/moneynote/internal/importer/csvfile"
	"github.com/MrJamesThe3rd/moneynote/internal/ledger"
	"github.com/MrJamesThe3rd/moneynote/internal/matching"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err as plain text with the status matching its kind.
// Unexpected errors are logged and hidden from the client.
func Error(w http.ResponseWriter, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", status)

		return
	}

	http.Error(w, err.Error(), status)
}

func Status(err error) int {
	switch {
	case errors.Is(err, transaction.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, transaction.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrEmptyDescription),
		errors.Is(err, transaction.ErrInvalidType),
		errors.Is(err, matching.ErrEmptyMapping),
		errors.Is(err, ledger.ErrInvalidMonth),
		errors.Is(err, importer.ErrUnknownFormat),
		errors.Is(err, csvfile.ErrNoProfile):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// Month reads the month query parameter. An empty value yields the zero
// Month, which callers replace with the current month.
func Month(r *http.Request) (ledger.Month, error) {
	s := r.URL.Query().Get("month")
	if s == "" {
		return ledger.Month{}, nil
	}

	return ledger.ParseMonth(s)
}
