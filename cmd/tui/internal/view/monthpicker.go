package view

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/moneynote/internal/format"
	"github.com/MrJamesThe3rd/moneynote/internal/ledger"
)

// MonthSelectedMsg is emitted when the user picks a month.
type MonthSelectedMsg struct {
	Month ledger.Month
}

type monthItem struct {
	month ledger.Month
	label string
}

func (i monthItem) FilterValue() string { return i.label }

type monthDelegate struct{}

func (d monthDelegate) Height() int                             { return 1 }
func (d monthDelegate) Spacing() int                            { return 0 }
func (d monthDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d monthDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(monthItem)
	if !ok {
		return
	}

	if index == m.Index() {
		fmt.Fprint(w, cursorStyle.Render("> "+it.label))
		return
	}

	fmt.Fprint(w, "  "+it.label)
}

type MonthPickerModel struct {
	list list.Model
}

// NewMonthPicker lists months newest first with the cursor on selected.
func NewMonthPicker(locale format.Locale, months []ledger.Month, selected ledger.Month) MonthPickerModel {
	items := make([]list.Item, len(months))
	cursor := 0

	for i, mo := range months {
		items[i] = monthItem{month: mo, label: locale.MonthLabel(mo.Year, mo.Month)}
		if mo == selected {
			cursor = i
		}
	}

	l := list.New(items, monthDelegate{}, 30, min(len(items)+2, 14))
	l.Title = "Choose a month"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.Select(cursor)

	return MonthPickerModel{list: l}
}

func (m MonthPickerModel) Update(msg tea.Msg) (MonthPickerModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "enter":
			it, ok := m.list.SelectedItem().(monthItem)
			if !ok {
				return m, nil
			}

			return m, func() tea.Msg { return MonthSelectedMsg{Month: it.month} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m MonthPickerModel) View() string {
	return panelStyle.Render(m.list.View() + "\n" + faintStyle.Render("Enter: choose | Esc: close"))
}
