package ledger

import (
	"slices"
	"time"

	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

// DailyGroup holds the entries of one calendar day.
type DailyGroup struct {
	Day     time.Time // midnight
	Key     string    // 2006-01-02
	Label   string
	Entries []Entry // newest first
	Total   int64   // net signed amount
	Expense int64
}

// GroupByDay partitions entries by calendar day in now's location. Groups and
// the entries inside them are newest first; every entry lands in exactly one
// group. A nil labeler falls back to EnglishDayLabel.
func GroupByDay(entries []Entry, now time.Time, label DayLabeler) []DailyGroup {
	if len(entries) == 0 {
		return nil
	}

	if label == nil {
		label = EnglishDayLabel
	}

	loc := now.Location()

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return b.Date.Compare(a.Date)
	})

	var groups []DailyGroup

	for _, e := range sorted {
		d := e.Date.In(loc)
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)

		if n := len(groups); n == 0 || !groups[n-1].Day.Equal(day) {
			groups = append(groups, DailyGroup{
				Day:   day,
				Key:   day.Format(time.DateOnly),
				Label: label(day, now),
			})
		}

		g := &groups[len(groups)-1]
		g.Entries = append(g.Entries, e)
		g.Total += e.Signed()

		if e.Type == transaction.TypeExpense {
			g.Expense += e.Amount
		}
	}

	return groups
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
