// Package overview serves the month overview, its live stream and the
// calendar view.
package overview

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/moneynote/internal/auth"
	"github.com/MrJamesThe3rd/moneynote/internal/format"
	"github.com/MrJamesThe3rd/moneynote/internal/http/respond"
	"github.com/MrJamesThe3rd/moneynote/internal/ledger"
	"github.com/MrJamesThe3rd/moneynote/internal/live"
)

const heartbeat = 25 * time.Second

type Handler struct {
	loader   live.Loader
	feed     *live.Feed
	locale   format.Locale
	bookOpts []ledger.Option
}

func NewHandler(loader live.Loader, feed *live.Feed, locale format.Locale, bookOpts ...ledger.Option) *Handler {
	return &Handler{
		loader:   loader,
		feed:     feed,
		locale:   locale,
		bookOpts: append([]ledger.Option{ledger.WithDayLabeler(locale.DayLabel)}, bookOpts...),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/overview", h.overview)
	r.Get("/overview/stream", h.stream)
	r.Get("/calendar", h.calendar)
}

func (h *Handler) book(r *http.Request) (*ledger.Book, error) {
	records, err := h.loader.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		return nil, err
	}

	return ledger.New(records, h.bookOpts...), nil
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	month, err := respond.Month(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	book, err := h.book(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, buildOverview(book, month, h.locale))
}

// stream sends an "overview" server-sent event with the whole overview each
// time the owner's records change. Slow clients only ever get the latest one.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	month, err := respond.Month(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	owner := auth.UserID(r.Context())
	if owner == "" {
		http.Error(w, "sign-in required", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	mailbox := live.NewMailbox()

	unsubscribe := h.feed.Subscribe(ctx, owner, mailbox.Put)
	defer unsubscribe()

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}

			flusher.Flush()
		case <-mailbox.Ready():
			snap, ok := mailbox.Take()
			if !ok {
				continue
			}

			resp := buildOverview(ledger.New(snap.Records, h.bookOpts...), month, h.locale)
			if snap.Err != nil {
				resp.Error = "records unavailable"
			}

			if err := writeEvent(w, snap.Seq, resp); err != nil {
				return
			}

			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, id uint64, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	_, err = fmt.Fprintf(w, "id: %d\nevent: overview\ndata: %s\n\n", id, data)

	return err
}

// calendar returns the grid of ?month= with the records of ?day=
// (2006-01-02). Without a day, today's records are listed when today falls in
// the month.
func (h *Handler) calendar(w http.ResponseWriter, r *http.Request) {
	month, err := respond.Month(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	book, err := h.book(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	var day time.Time

	if s := r.URL.Query().Get("day"); s != "" {
		day, err = time.ParseInLocation(time.DateOnly, s, book.Location())
		if err != nil {
			http.Error(w, "day must look like 2024-01-31", http.StatusBadRequest)
			return
		}

		if month.IsZero() {
			month = ledger.MonthOf(day)
		}
	}

	respond.JSON(w, http.StatusOK, buildCalendar(book, month, day, h.locale))
}
