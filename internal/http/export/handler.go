package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/moneynote/internal/auth"
	"github.com/MrJamesThe3rd/moneynote/internal/export"
	"github.com/MrJamesThe3rd/moneynote/internal/http/respond"
	"github.com/MrJamesThe3rd/moneynote/internal/ledger"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.statement)
	r.Get("/summary", h.summary)
	r.Get("/archive", h.archive)
}

// load resolves ?month= (the current month when absent) and the owner's book.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*ledger.Book, ledger.Month, bool) {
	month, err := respond.Month(r)
	if err != nil {
		respond.Error(w, err)
		return nil, month, false
	}

	book, err := h.svc.Book(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return nil, month, false
	}

	if month.IsZero() {
		month = book.CurrentMonth()
	}

	return book, month, true
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	book, month, ok := h.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteStatement(book, month, &buf); err != nil {
		respond.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"statement_%s.csv\"", month))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write statement", "error", err)
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	book, month, ok := h.load(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := io.WriteString(w, h.svc.Summary(book, month)); err != nil {
		slog.Error("failed to write summary", "error", err)
	}
}

// archive bundles the statement and the summary of a month in one zip.
func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	book, month, ok := h.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer

	zipWriter := zip.NewWriter(&buf)

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"statement.csv", func(w io.Writer) error { return export.WriteStatement(book, month, w) }},
		{"summary.txt", func(w io.Writer) error {
			_, err := io.WriteString(w, h.svc.Summary(book, month))
			return err
		}},
	}

	for _, f := range files {
		zf, err := zipWriter.Create(f.name)
		if err != nil {
			respond.Error(w, fmt.Errorf("creating %s: %w", f.name, err))
			return
		}

		if err := f.write(zf); err != nil {
			respond.Error(w, fmt.Errorf("writing %s: %w", f.name, err))
			return
		}
	}

	if err := zipWriter.Close(); err != nil {
		respond.Error(w, fmt.Errorf("closing zip: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"export_%s.zip\"", month))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write zip", "error", err)
	}
}
