package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/moneynote/internal/format"
	"github.com/MrJamesThe3rd/moneynote/internal/ledger"
)

var (
	markedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	todayStyle    = lipgloss.NewStyle().Underline(true)
	selectedStyle = cursorStyle
)

// CalendarModel shows a month grid with the days holding records marked,
// and the records of the chosen day below it.
type CalendarModel struct {
	CommonModel
	locale format.Locale

	book  *ledger.Book
	month ledger.Month
	day   int
}

// NewCalendarModel opens on today when month is the current month, otherwise
// on the first day.
func NewCalendarModel(locale format.Locale, book *ledger.Book, month ledger.Month) CalendarModel {
	m := CalendarModel{locale: locale, book: book, month: month, day: 1}
	if cal := book.Calendar(month); cal.Today != 0 {
		m.day = cal.Today
	}

	return m
}

func (m *CalendarModel) SetBook(book *ledger.Book) {
	m.book = book
}

func (m CalendarModel) Month() ledger.Month {
	return m.month
}

// Day is the chosen day at midnight in the book's location.
func (m CalendarModel) Day() time.Time {
	return time.Date(m.month.Year, m.month.Month, m.day, 0, 0, 0, 0, m.book.Location())
}

func (m CalendarModel) Update(msg tea.Msg) (CalendarModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "left", "h":
		m.move(-1)
	case "right", "l":
		m.move(1)
	case "up", "k":
		m.move(-7)
	case "down", "j":
		m.move(7)
	case "[", "pgup":
		m.month = m.month.Prev()
		m.day = min(m.day, m.month.Days())
	case "]", "pgdown":
		m.month = m.month.Next()
		m.day = min(m.day, m.month.Days())
	}

	return m, nil
}

// move shifts the chosen day by delta, crossing into neighbouring months.
func (m *CalendarModel) move(delta int) {
	d := m.Day().AddDate(0, 0, delta)
	m.month = ledger.MonthOf(d)
	m.day = d.Day()
}

func (m CalendarModel) View() string {
	cal := m.book.Calendar(m.month)

	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("‹ %s ›", m.locale.MonthLabel(m.month.Year, m.month.Month))))
	sb.WriteString("\n\n")

	for _, wd := range m.locale.Weekdays() {
		sb.WriteString(faintStyle.Render(fmt.Sprintf("%4s", wd)))
	}

	sb.WriteString("\n")

	for _, week := range cal.Weeks() {
		for _, day := range week {
			sb.WriteString(m.cell(cal, day))
		}

		sb.WriteString("\n")
	}

	day := m.Day()
	entries := m.book.FilterByDay(day)

	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(m.locale.DayLabel(day, m.book.Now())))
	sb.WriteString("\n")

	if len(entries) == 0 {
		sb.WriteString(faintStyle.Render("  No records"))
	}

	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString(entryLine(m.locale, m.book.Location(), e, false))
	}

	sb.WriteString("\n\n")
	sb.WriteString(faintStyle.Render("Arrows: day | [ ]: month | Esc: close"))

	return panelStyle.Render(sb.String())
}

func (m CalendarModel) cell(cal ledger.CalendarMonth, day int) string {
	if day == 0 {
		return "    "
	}

	label := fmt.Sprintf("%3d", day)
	mark := " "

	if cal.Marked[day] {
		label = markedStyle.Render(label)
		mark = markedStyle.Render("•")
	}

	if day == cal.Today {
		label = todayStyle.Render(label)
	}

	if day == m.day {
		return selectedStyle.Render(fmt.Sprintf("%3d", day)) + mark
	}

	return label + mark
}
