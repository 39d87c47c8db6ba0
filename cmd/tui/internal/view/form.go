package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

const formDateLayout = "2006-01-02 15:04"

var errBadAmount = errors.New("enter a positive whole amount, e.g. 12,000")

// SavedMsg reports the outcome of the add/edit form.
type SavedMsg struct {
	Created bool
	Err     error
}

// ParseAmount reads a positive whole amount. Grouping commas, spaces and a
// trailing 원 are ignored.
func ParseAmount(s string) (int64, error) {
	s = strings.NewReplacer(",", "", " ", "", "원", "", "₩", "").Replace(strings.TrimSpace(s))

	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() || !d.IsPositive() {
		return 0, errBadAmount
	}

	if !d.LessThanOrEqual(decimal.NewFromInt(1 << 53)) {
		return 0, errBadAmount
	}

	return d.IntPart(), nil
}

// EntryFormModel adds a record, or edits one when built with an existing
// record.
type EntryFormModel struct {
	CommonModel
	env     Env
	owner   string
	editing uuid.UUID

	form *huh.Form
	// The form writes through these pointers, so they outlive model copies.
	values *entryValues

	// saving is set from the first completion until the SavedMsg comes back.
	saving bool
	err    error
}

type entryValues struct {
	typ         string
	amount      string
	description string
	category    string
	date        string
}

// NewEntryForm starts empty for a nil existing record. now seeds the date.
func NewEntryForm(env Env, owner string, existing *transaction.Transaction, now time.Time) EntryFormModel {
	m := EntryFormModel{
		env:    env,
		owner:  owner,
		values: &entryValues{
			typ:  string(transaction.TypeExpense),
			date: now.In(env.Location).Format(formDateLayout),
		},
	}

	if existing != nil {
		m.editing = existing.ID
		m.values = &entryValues{
			typ:         string(existing.Type),
			amount:      env.Locale.Amount(existing.Amount),
			description: existing.Description,
			category:    existing.Category,
			date:        existing.Date.In(env.Location).Format(formDateLayout),
		}
	}

	m.form = m.buildForm()

	return m
}

func (m *EntryFormModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("Expense", string(transaction.TypeExpense)),
					huh.NewOption("Income", string(transaction.TypeIncome)),
				).
				Value(&m.values.typ),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("12,000").
				Value(&m.values.amount).
				Validate(func(s string) error {
					_, err := ParseAmount(s)
					return err
				}),

			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.values.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("category").
				Title("Category").
				Description("Leave empty for a suggestion").
				Value(&m.values.category),

			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder(formDateLayout).
				Value(&m.values.date).
				Validate(func(s string) error {
					_, err := m.parseDate(s)
					return err
				}),
		),
	).WithWidth(48).WithShowHelp(false)
}

func (m EntryFormModel) parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, layout := range []string{formDateLayout, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, s, m.env.Location); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("date must look like %s", formDateLayout)
}

// Editing is the record being edited, uuid.Nil when adding.
func (m EntryFormModel) Editing() uuid.UUID {
	return m.editing
}

func (m EntryFormModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m EntryFormModel) Update(msg tea.Msg) (EntryFormModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted || m.saving {
		return m, cmd
	}

	m.saving = true
	m.err = nil

	return m, m.saveCmd()
}

// Saving reports whether a save is in flight.
func (m EntryFormModel) Saving() bool {
	return m.saving
}

// SaveFailed reopens the form with what the user typed so it can be fixed
// and submitted again.
func (m EntryFormModel) SaveFailed(err error) (EntryFormModel, tea.Cmd) {
	m.saving = false
	m.err = err
	m.form = m.buildForm()

	return m, m.form.Init()
}

func (m EntryFormModel) View() string {
	title := "New record"
	if m.editing != uuid.Nil {
		title = "Edit record"
	}

	footer := faintStyle.Render("Enter: next | Esc: cancel")
	if m.err != nil {
		footer = errorStyle.Render("Could not save: "+m.err.Error()) + "\n" + footer
	}

	return panelStyle.Width(52).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(title),
			"",
			m.form.View(),
			"",
			footer,
		),
	)
}

func (m EntryFormModel) saveCmd() tea.Cmd {
	v := m.values
	typ := transaction.Type(v.typ)
	description := strings.TrimSpace(v.description)
	category := strings.TrimSpace(v.category)

	amount, err := ParseAmount(v.amount)
	if err != nil {
		return func() tea.Msg { return SavedMsg{Err: err} }
	}

	date, err := m.parseDate(v.date)
	if err != nil {
		return func() tea.Msg { return SavedMsg{Err: err} }
	}

	env, owner, editing := m.env, m.owner, m.editing

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if category == "" && env.Matching != nil {
			if suggested, err := env.Matching.Suggest(ctx, owner, description, typ); err == nil {
				category = suggested
			}
		}

		if editing == uuid.Nil {
			_, err := env.Transactions.Create(ctx, owner, transaction.CreateParams{
				Amount:      amount,
				Type:        typ,
				Description: description,
				Category:    category,
				Date:        date,
			})

			return SavedMsg{Created: true, Err: err}
		}

		patch := transaction.Patch{
			Amount:      &amount,
			Type:        &typ,
			Description: &description,
			Date:        &date,
		}
		if category != "" {
			patch.Category = &category
		}

		_, err := env.Transactions.Update(ctx, owner, editing, patch)

		return SavedMsg{Err: err}
	}
}
