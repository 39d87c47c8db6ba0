package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/moneynote/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/moneynote/internal/auth"
	"github.com/MrJamesThe3rd/moneynote/internal/ledger"
	"github.com/MrJamesThe3rd/moneynote/internal/live"
	"github.com/MrJamesThe3rd/moneynote/internal/navigation"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

// settleDelay lets a dismissed form keep its contents while it goes away.
const settleDelay = 300 * time.Millisecond

type tool int

const (
	toolNone tool = iota
	toolImport
	toolExport
)

type (
	snapshotMsg live.Snapshot
	settleMsg   struct{}
)

type model struct {
	env      view.Env
	bookOpts []ledger.Option
	now      func() time.Time

	session *auth.Session
	history *navigation.History
	machine *navigation.Machine
	mailbox *live.Mailbox
	owner   func() string

	book    *ledger.Book
	bookErr error
	month   ledger.Month
	status  string
	failed  bool

	shown navigation.State
	tool  tool

	login    view.LoginModel
	overview view.OverviewModel
	form     view.EntryFormModel
	calendar view.CalendarModel
	picker   view.MonthPickerModel
	detail   view.DetailModel
	importer view.ImportModel
	exporter view.ExportModel
}

type deps struct {
	env      view.Env
	bookOpts []ledger.Option
	now      func() time.Time
	session  *auth.Session
	history  *navigation.History
	machine  *navigation.Machine
	mailbox  *live.Mailbox
	owner    func() string
	login    view.LoginModel
}

func newModel(d deps) model {
	if d.now == nil {
		d.now = time.Now
	}

	m := model{
		env:      d.env,
		bookOpts: append([]ledger.Option{ledger.WithClock(d.now), ledger.WithLocation(d.env.Location)}, d.bookOpts...),
		now:      d.now,
		session:  d.session,
		history:  d.history,
		machine:  d.machine,
		mailbox:  d.mailbox,
		owner:    d.owner,
		login:    d.login,
		overview: view.NewOverviewModel(d.env.Locale, d.env.Location),
		shown:    navigation.Main{},
	}
	m.book = ledger.New(nil, m.bookOpts...)
	m.overview.SetBook(m.book, m.month, nil)

	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.login.Init(), waitForSnapshot(m.mailbox))
}

// waitForSnapshot blocks until the watcher hands over a snapshot.
func waitForSnapshot(mb *live.Mailbox) tea.Cmd {
	return func() tea.Msg {
		for range mb.Ready() {
			if snap, ok := mb.Take(); ok {
				return snapshotMsg(snap)
			}
		}

		return nil
	}
}

func (m model) user() string {
	user, _ := m.session.Current()
	return user
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	syncCmd := m.sync()

	return m, tea.Batch(cmd, syncCmd)
}

func (m model) update(msg tea.Msg) (model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.overview.SetSize(msg.Width, msg.Height)

		return m, nil

	case snapshotMsg:
		m.applySnapshot(live.Snapshot(msg))
		return m, waitForSnapshot(m.mailbox)

	case settleMsg:
		m.machine.Settle()
		return m, nil

	case view.SignInMsg:
		m.session.SignIn(msg.UserID)
		m.machine.Forget()
		m.month = ledger.Month{}
		m.setStatus("", false)

		return m, nil

	case view.BackMsg:
		if m.tool != toolNone {
			m.tool = toolNone
			return m, nil
		}

		return m, m.close()

	case view.OpenDetailMsg:
		m.machine.OpenDetail(msg.ID)
		return m, nil

	case view.EditMsg:
		m.machine.OpenEdit(msg.ID)
		return m, nil

	case view.SavedMsg:
		if msg.Err != nil {
			m.setStatus("Could not save: "+msg.Err.Error(), true)

			if _, ok := m.shown.(navigation.Add); !ok {
				return m, nil
			}

			var cmd tea.Cmd
			m.form, cmd = m.form.SaveFailed(msg.Err)

			return m, cmd
		}

		if msg.Created {
			m.setStatus("Record added", false)
		} else {
			m.setStatus("Record updated", false)
		}

		return m, m.close()

	case view.DeletedMsg:
		if msg.Err != nil {
			m.setStatus("Could not delete: "+msg.Err.Error(), true)
			return m, nil
		}

		m.machine.Close()
		m.machine.Forget()
		m.setStatus("Record deleted", false)

		return m, nil

	case view.MonthSelectedMsg:
		m.month = msg.Month
		m.overview.SetBook(m.book, m.month, m.bookErr)
		m.machine.Close()

		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	if m.user() == "" {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)

		return m, cmd
	}

	switch m.tool {
	case toolImport:
		var cmd tea.Cmd
		m.importer, cmd = m.importer.Update(msg)

		return m, cmd
	case toolExport:
		var cmd tea.Cmd
		m.exporter, cmd = m.exporter.Update(msg)

		return m, cmd
	}

	return m.updateView(msg)
}

func (m model) updateView(msg tea.Msg) (model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.shown.(type) {
	case navigation.Add:
		m.form, cmd = m.form.Update(msg)
	case navigation.Calendar:
		m.calendar, cmd = m.calendar.Update(msg)
	case navigation.MonthPicker:
		m.picker, cmd = m.picker.Update(msg)
	case navigation.Detail:
		m.detail, cmd = m.detail.Update(msg)
	default:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			if handled, cmd := m.mainKey(keyMsg); handled {
				return m, cmd
			}
		}

		m.overview, cmd = m.overview.Update(msg)
	}

	return m, cmd
}

// mainKey handles the shortcuts of the main view.
func (m *model) mainKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "q":
		return true, tea.Quit
	case "a":
		m.machine.OpenCreate()
	case "c":
		_ = m.machine.Open(navigation.ViewCalendar)
	case "m":
		_ = m.machine.Open(navigation.ViewMonthPicker)
	case "e":
		if e, ok := m.overview.Selected(); ok {
			m.machine.OpenEdit(e.ID)
		}
	case "i":
		m.tool = toolImport
		m.importer = view.NewImportModel(m.env, m.user())

		return true, m.importer.Init()
	case "x":
		m.tool = toolExport
		m.exporter = view.NewExportModel(m.env, m.book, m.overview.Month())

		return true, m.exporter.Init()
	case "L":
		m.signOut()
	default:
		return false, nil
	}

	return true, nil
}

// close dismisses the top overlay; leaving the form schedules Settle.
func (m *model) close() tea.Cmd {
	_, wasAdd := m.shown.(navigation.Add)

	m.machine.Close()

	if !wasAdd {
		return nil
	}

	return tea.Tick(settleDelay, func(time.Time) tea.Msg { return settleMsg{} })
}

func (m *model) signOut() {
	for m.history.Depth() > 0 {
		m.machine.Close()
	}

	m.session.SignOut()
	m.machine.Forget()
	m.tool = toolNone
	m.month = ledger.Month{}
	m.setStatus("", false)
}

func (m *model) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

// applySnapshot replaces the book unless the snapshot belongs to a user
// who is no longer signed in.
func (m *model) applySnapshot(snap live.Snapshot) {
	if snap.Owner != m.owner() {
		return
	}

	m.book = ledger.New(snap.Records, m.bookOpts...)
	m.bookErr = snap.Err
	m.overview.SetBook(m.book, m.month, m.bookErr)

	switch m.shown.(type) {
	case navigation.Calendar:
		m.calendar.SetBook(m.book)
	case navigation.Detail:
		m.detail.SetBook(m.book)
	}
}

// sync builds the overlay for the machine's state when it changed.
func (m *model) sync() tea.Cmd {
	state := m.machine.State()
	if state == m.shown {
		return nil
	}

	m.shown = state
	owner := m.user()

	switch s := state.(type) {
	case navigation.Add:
		tx := m.record(s.Editing)
		m.form = view.NewEntryForm(m.env, owner, tx, m.now())

		return m.form.Init()
	case navigation.Calendar:
		m.calendar = view.NewCalendarModel(m.env.Locale, m.book, m.overview.Month())
	case navigation.MonthPicker:
		m.picker = view.NewMonthPicker(m.env.Locale, m.book.AvailableMonths(), m.overview.Month())
	case navigation.Detail:
		m.detail = view.NewDetailModel(m.env, owner, s.Selected, m.book)
	}

	return nil
}

// record finds id in the current book. A nil result starts an empty form.
func (m model) record(id uuid.UUID) *transaction.Transaction {
	if id == uuid.Nil {
		return nil
	}

	for _, e := range m.book.Entries() {
		if e.ID == id {
			return &e.Transaction
		}
	}

	return nil
}

var (
	statusOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusErr  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
	frameStyle = lipgloss.NewStyle().Padding(1, 2)
)

func (m model) View() string {
	if m.user() == "" {
		return m.login.View()
	}

	switch m.tool {
	case toolImport:
		return frameStyle.Render(m.importer.View())
	case toolExport:
		return frameStyle.Render(m.exporter.View())
	}

	var body string

	switch m.shown.(type) {
	case navigation.Add:
		body = m.form.View()
	case navigation.Calendar:
		body = m.calendar.View()
	case navigation.MonthPicker:
		body = m.picker.View()
	case navigation.Detail:
		body = m.detail.View()
	default:
		body = m.overview.View() + "\n\n" +
			helpStyle.Render("a: add | c: calendar | m: month | enter: detail | i: import | x: export | L: sign out | q: quit")
	}

	if m.status != "" {
		style := statusOK
		if m.failed {
			style = statusErr
		}

		body += "\n" + style.Render(m.status)
	}

	return frameStyle.Render(body)
}
