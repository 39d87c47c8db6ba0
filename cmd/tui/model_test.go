package main

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/moneynote/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/moneynote/internal/auth"
	"github.com/MrJamesThe3rd/moneynote/internal/format"
	"github.com/MrJamesThe3rd/moneynote/internal/ledger"
	"github.com/MrJamesThe3rd/moneynote/internal/live"
	"github.com/MrJamesThe3rd/moneynote/internal/navigation"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction/memstore"
)

var testNow = time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC)

type fixture struct {
	session *auth.Session
	machine *navigation.Machine
}

func newTestModel(t *testing.T) (model, fixture) {
	t.Helper()

	session := auth.NewSession()
	history := navigation.NewHistory()
	machine := navigation.New(history)
	t.Cleanup(machine.Stop)

	m := newModel(deps{
		env: view.Env{
			Transactions: transaction.NewService(memstore.New()),
			Locale:       format.English,
			Location:     time.UTC,
		},
		now:     func() time.Time { return testNow },
		session: session,
		history: history,
		machine: machine,
		mailbox: live.NewMailbox(),
		owner: func() string {
			user, _ := session.Current()
			return user
		},
		login: view.NewLoginModel("Test", "User", func(s string) (string, error) { return s, nil }),
	})

	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	return m, fixture{session: session, machine: machine}
}

func send(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()

	next, _ := m.Update(msg)

	out, ok := next.(model)
	require.True(t, ok)

	return out
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func lunch(owner string) *transaction.Transaction {
	return &transaction.Transaction{
		ID:          uuid.New(),
		OwnerID:     owner,
		Amount:      5000,
		Type:        transaction.TypeExpense,
		Description: "Lunch",
		Category:    "Food",
		Date:        time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC),
	}
}

func TestModel_SignInAndOut(t *testing.T) {
	m, f := newTestModel(t)

	assert.Contains(t, m.View(), "Test")

	m = send(t, m, view.SignInMsg{UserID: "u1"})

	user, ok := f.session.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", user)

	m = send(t, m, key("a"))
	assert.Equal(t, navigation.ViewAdd, f.machine.View())

	m = send(t, m, view.BackMsg{})
	m = send(t, m, key("L"))

	_, ok = f.session.Current()
	assert.False(t, ok)
	assert.Equal(t, navigation.ViewMain, f.machine.View())
	assert.Equal(t, navigation.Main{}, m.shown)
}

func TestModel_EditSettlesAfterClose(t *testing.T) {
	m, f := newTestModel(t)
	tx := lunch("u1")

	m = send(t, m, view.SignInMsg{UserID: "u1"})
	m = send(t, m, snapshotMsg{Owner: "u1", Seq: 1, Records: []*transaction.Transaction{tx}})
	require.Equal(t, 1, m.book.Len())

	m = send(t, m, key("e"))
	assert.Equal(t, navigation.Add{Editing: tx.ID}, m.shown)
	assert.Equal(t, tx.ID, m.form.Editing())

	next, cmd := m.Update(view.BackMsg{})
	m = next.(model)

	assert.NotNil(t, cmd)
	assert.Equal(t, navigation.ViewMain, f.machine.View())
	assert.Equal(t, tx.ID, f.machine.Editing(), "editing is kept until settled")

	m = send(t, m, settleMsg{})
	assert.Equal(t, uuid.Nil, f.machine.Editing())

	m = send(t, m, key("a"))
	assert.Equal(t, uuid.Nil, m.form.Editing())
}

func TestModel_DropsSnapshotOfOtherUser(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(t, m, view.SignInMsg{UserID: "u1"})
	m = send(t, m, snapshotMsg{Owner: "u2", Seq: 1, Records: []*transaction.Transaction{lunch("u2")}})

	assert.Equal(t, 0, m.book.Len())
}

func TestModel_MonthPicked(t *testing.T) {
	m, f := newTestModel(t)

	m = send(t, m, view.SignInMsg{UserID: "u1"})
	m = send(t, m, key("m"))
	assert.Equal(t, navigation.MonthPicker{}, m.shown)

	m = send(t, m, view.MonthSelectedMsg{Month: ledger.Month{Year: 2023, Month: time.December}})

	assert.Equal(t, navigation.ViewMain, f.machine.View())
	assert.Equal(t, ledger.Month{Year: 2023, Month: time.December}, m.overview.Month())
}

func TestModel_DetailDeleted(t *testing.T) {
	m, f := newTestModel(t)
	tx := lunch("u1")

	m = send(t, m, view.SignInMsg{UserID: "u1"})
	m = send(t, m, snapshotMsg{Owner: "u1", Seq: 1, Records: []*transaction.Transaction{tx}})
	m = send(t, m, view.OpenDetailMsg{ID: tx.ID})

	assert.Equal(t, navigation.Detail{Selected: tx.ID}, m.shown)
	assert.Contains(t, m.View(), "Lunch")

	m = send(t, m, view.DeletedMsg{ID: tx.ID})

	assert.Equal(t, navigation.ViewMain, f.machine.View())
	assert.Equal(t, uuid.Nil, f.machine.Selected())
	assert.Equal(t, "Record deleted", m.status)
}

func TestModel_SaveErrorKeepsFormOpen(t *testing.T) {
	m, f := newTestModel(t)

	m = send(t, m, view.SignInMsg{UserID: "u1"})
	m = send(t, m, key("a"))
	m = send(t, m, view.SavedMsg{Created: true, Err: errors.New("network down")})

	assert.True(t, m.failed)
	assert.Equal(t, navigation.ViewAdd, f.machine.View())
	assert.Equal(t, navigation.Add{}, m.shown)
	assert.False(t, m.form.Saving())
	assert.Contains(t, m.View(), "network down")

	m = send(t, m, view.SavedMsg{Created: true})

	assert.False(t, m.failed)
	assert.Equal(t, navigation.ViewMain, f.machine.View())
	assert.Equal(t, "Record added", m.status)
}
