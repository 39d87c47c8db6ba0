package ledger

import "time"

// CalendarMonth is a month grid: Offset blank cells (Sunday first) followed
// by Days numbered cells.
type CalendarMonth struct {
	Month  Month
	Offset int
	Days   int
	Marked map[int]bool // days holding at least one record
	Today  int          // day of month of now, 0 when now is in another month
}

// Calendar builds the grid for m.
func (b *Book) Calendar(m Month) CalendarMonth {
	c := CalendarMonth{
		Month:  m,
		Offset: int(m.Start(b.loc).Weekday()),
		Days:   m.Days(),
		Marked: make(map[int]bool),
	}

	for _, e := range b.entries {
		d := e.Date.In(b.loc)
		if MonthOf(d) == m {
			c.Marked[d.Day()] = true
		}
	}

	if now := b.Now(); MonthOf(now) == m {
		c.Today = now.Day()
	}

	return c
}

// Weeks lays the month out in rows of seven; blank cells are 0.
func (c CalendarMonth) Weeks() [][7]int {
	var weeks [][7]int

	var row [7]int

	col := c.Offset
	for day := 1; day <= c.Days; day++ {
		row[col] = day
		col++

		if col == 7 {
			weeks = append(weeks, row)
			row = [7]int{}
			col = 0
		}
	}

	if col > 0 {
		weeks = append(weeks, row)
	}

	return weeks
}

// Date returns the given day of the month at midnight in loc.
func (c CalendarMonth) Date(day int, loc *time.Location) time.Time {
	return time.Date(c.Month.Year, c.Month.Month, day, 0, 0, 0, 0, loc)
}
