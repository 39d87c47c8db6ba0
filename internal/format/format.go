// Package format renders amounts, days and months for display in one of the
// supported locales.
package format

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrUnsupportedLocale = errors.New("unsupported locale")

var supported = []language.Tag{language.English, language.Korean}

var matcher = language.NewMatcher(supported)

type Locale struct {
	tag     language.Tag
	printer *message.Printer
}

// English is the default locale.
var English = newLocale(language.English)

func newLocale(tag language.Tag) Locale {
	return Locale{tag: tag, printer: message.NewPrinter(tag)}
}

// New resolves a locale name such as "en", "ko" or "ko-KR".
func New(name string) (Locale, error) {
	if name == "" {
		return English, nil
	}

	tag, err := language.Parse(name)
	if err != nil {
		return Locale{}, fmt.Errorf("parsing locale %q: %w", name, ErrUnsupportedLocale)
	}

	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Locale{}, fmt.Errorf("locale %q: %w", name, ErrUnsupportedLocale)
	}

	return newLocale(supported[idx]), nil
}

func (l Locale) Tag() language.Tag {
	return l.tag
}

func (l Locale) korean() bool {
	return l.tag == language.Korean
}

// Amount groups digits the locale's way, e.g. 12,000.
func (l Locale) Amount(n int64) string {
	if l.printer == nil {
		return English.Amount(n)
	}

	return l.printer.Sprintf("%d", n)
}

// Currency is Amount with the won suffix in Korean.
func (l Locale) Currency(n int64) string {
	if l.korean() {
		return l.Amount(n) + "원"
	}

	return l.Amount(n)
}

// Signed prefixes income with + and expense with -.
func (l Locale) Signed(n int64, income bool) string {
	if income {
		return "+" + l.Currency(n)
	}

	return "-" + l.Currency(n)
}

func (l Locale) Today() string {
	if l.korean() {
		return "오늘"
	}

	return "Today"
}

// DayLabel is Today for now's calendar day and a month-day label otherwise.
// It satisfies ledger.DayLabeler.
func (l Locale) DayLabel(day, now time.Time) string {
	now = now.In(day.Location())

	if day.Year() == now.Year() && day.YearDay() == now.YearDay() {
		return l.Today()
	}

	if l.korean() {
		return fmt.Sprintf("%d월 %d일", int(day.Month()), day.Day())
	}

	return day.Format("January 2")
}

func (l Locale) MonthLabel(year int, month time.Month) string {
	if l.korean() {
		return fmt.Sprintf("%d년 %d월", year, int(month))
	}

	return fmt.Sprintf("%s %d", month, year)
}

// Time is the clock time, e.g. "9:05 AM" or "오전 9:05".
func (l Locale) Time(t time.Time) string {
	if !l.korean() {
		return t.Format("3:04 PM")
	}

	ampm := "오전"
	if t.Hour() >= 12 {
		ampm = "오후"
	}

	return ampm + " " + t.Format("3:04")
}

// Date is a long date with weekday, used for detail headers.
func (l Locale) Date(t time.Time) string {
	if l.korean() {
		return fmt.Sprintf("%d년 %d월 %d일 (%s)", t.Year(), int(t.Month()), t.Day(), l.Weekdays()[t.Weekday()])
	}

	return t.Format("Monday, January 2, 2006")
}

// Weekdays are short weekday names starting with Sunday.
func (l Locale) Weekdays() []string {
	if l.korean() {
		return []string{"일", "월", "화", "수", "목", "금", "토"}
	}

	return []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
}
