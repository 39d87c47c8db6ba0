package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidMonth = errors.New("month must look like 2024-01")

// Month identifies a calendar month. The zero value is not a valid month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month t falls in, in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth accepts "2024-01" and the unpadded "2024-1".
func ParseMonth(s string) (Month, error) {
	y, m, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Month{}, fmt.Errorf("parsing month %q: %w", s, ErrInvalidMonth)
	}

	year, err := strconv.Atoi(y)
	if err != nil || year < 1 {
		return Month{}, fmt.Errorf("parsing month %q: %w", s, ErrInvalidMonth)
	}

	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return Month{}, fmt.Errorf("parsing month %q: %w", s, ErrInvalidMonth)
	}

	return Month{Year: year, Month: time.Month(month)}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Start is midnight on the first day of m in loc.
func (m Month) Start(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// Days is the number of days in m.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m Month) Prev() Month {
	return MonthOf(time.Date(m.Year, m.Month-1, 1, 0, 0, 0, 0, time.UTC))
}

func (m Month) Next() Month {
	return MonthOf(time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC))
}

// Compare returns -1, 0 or +1 as m is before, equal to or after o.
func (m Month) Compare(o Month) int {
	switch {
	case m.Year != o.Year:
		if m.Year < o.Year {
			return -1
		}

		return 1
	case m.Month < o.Month:
		return -1
	case m.Month > o.Month:
		return 1
	}

	return 0
}
