package overview

import (
	"time"

	txHandler "github.com/MrJamesThe3rd/moneynote/internal/http/transaction"
	"github.com/MrJamesThe3rd/moneynote/internal/format"
	"github.com/MrJamesThe3rd/moneynote/internal/ledger"
)

type overviewResponse struct {
	Months         []string      `json:"months"`
	Month          string        `json:"month"`
	MonthLabel     string        `json:"month_label"`
	MonthlyExpense int64         `json:"monthly_expense"`
	TotalBalance   int64         `json:"total_balance"`
	Days           []dayResponse `json:"days"`
	Error          string        `json:"error,omitempty"`
}

type dayResponse struct {
	Key     string          `json:"key"`
	Label   string          `json:"label"`
	Total   int64           `json:"total"`
	Expense int64           `json:"expense"`
	Entries []entryResponse `json:"entries"`
}

type entryResponse struct {
	txHandler.EntryResponse
	TimeLabel string `json:"time_label"`
}

type calendarResponse struct {
	Month      string          `json:"month"`
	MonthLabel string          `json:"month_label"`
	Weekdays   []string        `json:"weekdays"`
	Weeks      [][7]int        `json:"weeks"`
	Marked     []int           `json:"marked"`
	Today      int             `json:"today,omitempty"`
	Day        string          `json:"day,omitempty"`
	Entries    []entryResponse `json:"entries"`
}

// buildOverview describes month of book. A zero month means the current one.
func buildOverview(book *ledger.Book, month ledger.Month, locale format.Locale) overviewResponse {
	if month.IsZero() {
		month = book.CurrentMonth()
	}

	months := book.AvailableMonths()

	resp := overviewResponse{
		Months:         make([]string, len(months)),
		Month:          month.String(),
		MonthLabel:     locale.MonthLabel(month.Year, month.Month),
		MonthlyExpense: book.MonthlyExpenseTotal(month),
		TotalBalance:   book.TotalBalance(),
		Days:           []dayResponse{},
	}

	for i, m := range months {
		resp.Months[i] = m.String()
	}

	for _, g := range book.GroupByDay(book.FilterByMonth(month)) {
		resp.Days = append(resp.Days, dayResponse{
			Key:     g.Key,
			Label:   g.Label,
			Total:   g.Total,
			Expense: g.Expense,
			Entries: toEntries(g.Entries, locale, book.Location()),
		})
	}

	return resp
}

func buildCalendar(book *ledger.Book, month ledger.Month, day time.Time, locale format.Locale) calendarResponse {
	if month.IsZero() {
		month = book.CurrentMonth()
	}

	cal := book.Calendar(month)

	resp := calendarResponse{
		Month:      month.String(),
		MonthLabel: locale.MonthLabel(month.Year, month.Month),
		Weekdays:   locale.Weekdays(),
		Weeks:      cal.Weeks(),
		Marked:     []int{},
		Today:      cal.Today,
		Entries:    []entryResponse{},
	}

	for d := 1; d <= cal.Days; d++ {
		if cal.Marked[d] {
			resp.Marked = append(resp.Marked, d)
		}
	}

	if day.IsZero() && cal.Today != 0 {
		day = cal.Date(cal.Today, book.Location())
	}

	if !day.IsZero() {
		resp.Day = day.Format(time.DateOnly)
		resp.Entries = toEntries(book.FilterByDay(day), locale, book.Location())
	}

	return resp
}

func toEntries(entries []ledger.Entry, locale format.Locale, loc *time.Location) []entryResponse {
	out := make([]entryResponse, len(entries))
	for i, e := range entries {
		out[i] = entryResponse{
			EntryResponse: txHandler.ToEntryResponse(e),
			TimeLabel:     locale.Time(e.Date.In(loc)),
		}
	}

	return out
}
