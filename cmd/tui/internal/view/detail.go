package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/moneynote/internal/ledger"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

// EditMsg asks for the add form preloaded with a record.
type EditMsg struct {
	ID uuid.UUID
}

// DeletedMsg reports the outcome of a delete.
type DeletedMsg struct {
	ID  uuid.UUID
	Err error
}

// DetailModel is the sheet of one record.
type DetailModel struct {
	CommonModel
	env   Env
	owner string

	id    uuid.UUID
	entry *ledger.Entry

	confirming bool
	confirm    *bool
	form       *huh.Form
}

func NewDetailModel(env Env, owner string, id uuid.UUID, book *ledger.Book) DetailModel {
	m := DetailModel{env: env, owner: owner, id: id}
	m.SetBook(book)

	return m
}

// SetBook picks the record out of a fresh book. It is nil once the record is
// gone.
func (m *DetailModel) SetBook(book *ledger.Book) {
	m.entry = nil

	if book == nil {
		return
	}

	for _, e := range book.Entries() {
		if e.ID == m.id {
			m.entry = &e
			return
		}
	}
}

func (m DetailModel) ID() uuid.UUID {
	return m.id
}

func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	if m.confirming {
		return m.updateConfirm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "e":
		if m.entry == nil {
			return m, nil
		}

		id := m.id

		return m, func() tea.Msg { return EditMsg{ID: id} }
	case "d":
		if m.entry == nil {
			return m, nil
		}

		m.confirming = true
		m.confirm = new(bool)
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Delete this record?").
					Affirmative("Delete").
					Negative("Keep").
					Value(m.confirm),
			),
		).WithShowHelp(false)

		return m, m.form.Init()
	}

	return m, nil
}

func (m DetailModel) updateConfirm(msg tea.Msg) (DetailModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.confirming = false
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.confirming = false
		return m, nil
	case huh.StateCompleted:
		m.confirming = false
		if !*m.confirm {
			return m, nil
		}

		return m, m.deleteCmd()
	}

	return m, cmd
}

func (m DetailModel) deleteCmd() tea.Cmd {
	svc, owner, id := m.env.Transactions, m.owner, m.id

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return DeletedMsg{ID: id, Err: svc.Delete(ctx, owner, id)}
	}
}

func (m DetailModel) View() string {
	if m.entry == nil {
		return panelStyle.Render(faintStyle.Render("This record no longer exists.") + "\n\n" + faintStyle.Render("Esc: close"))
	}

	e := m.entry
	d := e.Date.In(m.env.Location)
	locale := m.env.Locale

	typeLabel := "Expense"
	if e.Type == transaction.TypeIncome {
		typeLabel = "Income"
	}

	category := e.Category
	if category == "" {
		category = faintStyle.Render("none")
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render(locale.Date(d)))
	sb.WriteString("\n\n")
	sb.WriteString(signed(locale, e.Amount, e.Type))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "%-12s %s\n", "Type", typeLabel)
	fmt.Fprintf(&sb, "%-12s %s\n", "Description", e.Description)
	fmt.Fprintf(&sb, "%-12s %s\n", "Category", category)
	fmt.Fprintf(&sb, "%-12s %s\n", "Time", locale.Time(d))
	fmt.Fprintf(&sb, "%-12s %s\n", "Balance", locale.Currency(e.BalanceAfter))

	if m.confirming {
		sb.WriteString("\n")
		sb.WriteString(m.form.View())
	} else {
		sb.WriteString("\n")
		sb.WriteString(faintStyle.Render("e: edit | d: delete | Esc: close"))
	}

	return panelStyle.Render(sb.String())
}
