package ledger

import (
	"slices"
	"time"

	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

// DayLabeler names a calendar day relative to now, e.g. "Today" or "March 5".
type DayLabeler func(day, now time.Time) string

// EnglishDayLabel is the default DayLabeler.
func EnglishDayLabel(day, now time.Time) string {
	if sameDay(day, now.In(day.Location())) {
		return "Today"
	}

	return day.Format("January 2")
}

// Book answers the derived queries over one snapshot of records.
type Book struct {
	entries []Entry // ascending
	now     func() time.Time
	loc     *time.Location
	label   DayLabeler
}

type Option func(*Book)

func WithClock(now func() time.Time) Option {
	return func(b *Book) { b.now = now }
}

// WithLocation sets where calendar days and months are evaluated.
func WithLocation(loc *time.Location) Option {
	return func(b *Book) {
		if loc != nil {
			b.loc = loc
		}
	}
}

func WithDayLabeler(l DayLabeler) Option {
	return func(b *Book) {
		if l != nil {
			b.label = l
		}
	}
}

func New(records []*transaction.Transaction, opts ...Option) *Book {
	b := &Book{
		now:   time.Now,
		loc:   time.Local,
		label: EnglishDayLabel,
	}

	for _, opt := range opts {
		opt(b)
	}

	b.entries = Accumulate(records)

	return b
}

// Entries returns every entry ascending by date.
func (b *Book) Entries() []Entry {
	return slices.Clone(b.entries)
}

func (b *Book) Len() int {
	return len(b.entries)
}

func (b *Book) Location() *time.Location {
	return b.loc
}

// Now is the book's clock in its location.
func (b *Book) Now() time.Time {
	return b.now().In(b.loc)
}

// CurrentMonth is the month of Now.
func (b *Book) CurrentMonth() Month {
	return MonthOf(b.Now())
}

// AvailableMonths lists every month holding a record plus the current month,
// newest first.
func (b *Book) AvailableMonths() []Month {
	seen := map[Month]struct{}{b.CurrentMonth(): {}}
	for _, e := range b.entries {
		seen[MonthOf(e.Date.In(b.loc))] = struct{}{}
	}

	months := make([]Month, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}

	slices.SortFunc(months, func(a, c Month) int { return c.Compare(a) })

	return months
}

// FilterByMonth returns the entries dated in m, newest first.
func (b *Book) FilterByMonth(m Month) []Entry {
	return b.descending(func(e Entry) bool {
		return MonthOf(e.Date.In(b.loc)) == m
	})
}

// FilterByDay returns the entries dated on day's calendar day, newest first.
func (b *Book) FilterByDay(day time.Time) []Entry {
	day = day.In(b.loc)

	return b.descending(func(e Entry) bool {
		return sameDay(e.Date.In(b.loc), day)
	})
}

func (b *Book) descending(keep func(Entry) bool) []Entry {
	var out []Entry

	for i := len(b.entries) - 1; i >= 0; i-- {
		if keep(b.entries[i]) {
			out = append(out, b.entries[i])
		}
	}

	return out
}

// MonthlyExpenseTotal sums the expense amounts dated in m. Income is ignored.
func (b *Book) MonthlyExpenseTotal(m Month) int64 {
	var total int64

	for _, e := range b.entries {
		if e.Type == transaction.TypeExpense && MonthOf(e.Date.In(b.loc)) == m {
			total += e.Amount
		}
	}

	return total
}

// TotalBalance is the balance after the last entry of the whole set, not just
// the selected month.
func (b *Book) TotalBalance() int64 {
	if len(b.entries) == 0 {
		return 0
	}

	return b.entries[len(b.entries)-1].BalanceAfter
}

// GroupByDay groups entries by calendar day using the book's clock, location
// and labeler.
func (b *Book) GroupByDay(entries []Entry) []DailyGroup {
	return GroupByDay(entries, b.Now(), b.label)
}
