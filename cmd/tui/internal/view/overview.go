package view

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/moneynote/internal/format"
	"github.com/MrJamesThe3rd/moneynote/internal/ledger"
)

// OpenDetailMsg asks for the detail sheet of a record.
type OpenDetailMsg struct {
	ID uuid.UUID
}

// dayItem heads the entries of one day.
type dayItem struct {
	group ledger.DailyGroup
}

func (i dayItem) FilterValue() string { return i.group.Label }

type entryItem struct {
	entry ledger.Entry
}

func (i entryItem) FilterValue() string { return i.entry.Description }

type entryDelegate struct {
	locale format.Locale
	loc    *time.Location
}

func (d entryDelegate) Height() int                             { return 1 }
func (d entryDelegate) Spacing() int                            { return 0 }
func (d entryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d entryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	switch it := item.(type) {
	case dayItem:
		g := it.group
		fmt.Fprintf(w, "%s  %s",
			lipgloss.NewStyle().Bold(true).Render(g.Label),
			faintStyle.Render(d.locale.Signed(abs(g.Total), g.Total >= 0)),
		)
	case entryItem:
		fmt.Fprint(w, entryLine(d.locale, d.loc, it.entry, index == m.Index()))
	}
}

// entryLine is the one-line rendering shared by the record lists.
func entryLine(locale format.Locale, loc *time.Location, e ledger.Entry, selected bool) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}

	line := fmt.Sprintf("%s%-9s %-24s %s  %s",
		cursor,
		locale.Time(e.Date.In(loc)),
		truncate(e.Description, 24),
		signed(locale, e.Amount, e.Type),
		faintStyle.Render(e.Category),
	)

	if selected {
		return cursorStyle.Render(line)
	}

	return line
}

// OverviewModel is the main screen: the selected month's totals and its
// records grouped by day.
type OverviewModel struct {
	CommonModel
	locale format.Locale

	list  list.Model
	book  *ledger.Book
	month ledger.Month
	err   error
}

func NewOverviewModel(locale format.Locale, loc *time.Location) OverviewModel {
	l := list.New([]list.Item{}, entryDelegate{locale: locale, loc: loc}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return OverviewModel{locale: locale, list: l}
}

// SetBook replaces the records shown. A zero month follows the current one.
// err marks records that could not be loaded.
func (m *OverviewModel) SetBook(book *ledger.Book, month ledger.Month, err error) {
	m.book = book
	m.month = month
	m.err = err

	var items []list.Item

	if book != nil {
		for _, g := range book.GroupByDay(book.FilterByMonth(m.Month())) {
			items = append(items, dayItem{group: g})
			for _, e := range g.Entries {
				items = append(items, entryItem{entry: e})
			}
		}
	}

	cursor := m.list.Index()
	m.list.SetItems(items)

	if cursor >= len(items) {
		cursor = len(items) - 1
	}

	if cursor < 1 && len(items) > 1 {
		cursor = 1
	}

	if cursor >= 0 {
		m.list.Select(cursor)
	}
}

// Month is the month on screen.
func (m OverviewModel) Month() ledger.Month {
	if m.month.IsZero() && m.book != nil {
		return m.book.CurrentMonth()
	}

	return m.month
}

// Selected is the record under the cursor, if any.
func (m OverviewModel) Selected() (ledger.Entry, bool) {
	it, ok := m.list.SelectedItem().(entryItem)
	if !ok {
		return ledger.Entry{}, false
	}

	return it.entry, true
}

func (m *OverviewModel) SetSize(width, height int) {
	m.Width = width
	m.Height = height
	m.list.SetSize(width, max(height-8, 3))
}

func (m OverviewModel) Update(msg tea.Msg) (OverviewModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if e, ok := m.Selected(); ok {
			return m, func() tea.Msg { return OpenDetailMsg{ID: e.ID} }
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m OverviewModel) View() string {
	month := m.Month()

	var expense, balance int64
	if m.book != nil {
		expense = m.book.MonthlyExpenseTotal(month)
		balance = m.book.TotalBalance()
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.locale.MonthLabel(month.Year, month.Month)),
		fmt.Sprintf("Monthly expense: %s", expenseStyle.Render(m.locale.Currency(expense))),
		fmt.Sprintf("Total balance:   %s", activeStyle(m.locale.Currency(balance))),
	)

	var body string

	switch {
	case m.err != nil:
		body = errorStyle.Render("No data: records could not be loaded.")
	case len(m.list.Items()) == 0:
		body = faintStyle.Render("No records this month. Press a to add one.")
	default:
		body = m.list.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}
