// Package navigation decides which overlay is visible. The view is always
// derived from the token held by a Location, so back navigation from outside
// the application and Close behave the same way.
package navigation

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrNoSelection = errors.New("no transaction selected")

type View int

const (
	ViewMain View = iota
	ViewAdd
	ViewCalendar
	ViewMonthPicker
	ViewDetail
)

func (v View) String() string {
	switch v {
	case ViewMain:
		return "main"
	case ViewAdd:
		return "add"
	case ViewCalendar:
		return "calendar"
	case ViewMonthPicker:
		return "month"
	case ViewDetail:
		return "detail"
	}

	return "unknown"
}

// Token is the Location token that shows v.
func (v View) Token() string {
	switch v {
	case ViewAdd:
		return "#add"
	case ViewCalendar:
		return "#calendar"
	case ViewMonthPicker:
		return "#month"
	case ViewDetail:
		return "#detail"
	}

	return ""
}

// ViewOf maps a token to its view. Unknown tokens show the main view.
func ViewOf(token string) View {
	switch token {
	case "#add":
		return ViewAdd
	case "#calendar":
		return ViewCalendar
	case "#month":
		return ViewMonthPicker
	case "#detail":
		return ViewDetail
	}

	return ViewMain
}

// State is one of Main, Add, Calendar, MonthPicker or Detail.
type State interface {
	View() View
	isState()
}

type Main struct{}

// Add is the add/edit form. A nil Editing id means a new record.
type Add struct {
	Editing uuid.UUID
}

type Calendar struct{}

type MonthPicker struct{}

type Detail struct {
	Selected uuid.UUID
}

func (Main) View() View        { return ViewMain }
func (Add) View() View         { return ViewAdd }
func (Calendar) View() View    { return ViewCalendar }
func (MonthPicker) View() View { return ViewMonthPicker }
func (Detail) View() View      { return ViewDetail }

func (Main) isState()        {}
func (Add) isState()         {}
func (Calendar) isState()    {}
func (MonthPicker) isState() {}
func (Detail) isState()      {}

// Machine tracks the selected and edited records on top of a Location.
type Machine struct {
	loc Location

	mu       sync.Mutex
	selected uuid.UUID
	editing  uuid.UUID
	last     State
	subs     map[int]func(State)
	nextID   int
	stop     func()
}

func New(loc Location) *Machine {
	m := &Machine{
		loc:  loc,
		subs: make(map[int]func(State)),
	}

	m.last = m.stateLocked()
	m.stop = loc.Subscribe(func(string) { m.refresh() })

	return m
}

// Stop detaches the machine from its Location.
func (m *Machine) Stop() {
	m.stop()
}

// Open shows v. Opening add starts a new record; opening detail needs a
// selection made with OpenDetail first.
func (m *Machine) Open(v View) error {
	switch v {
	case ViewMain:
		m.Close()
		return nil
	case ViewAdd:
		m.OpenCreate()
		return nil
	case ViewDetail:
		if m.Selected() == uuid.Nil {
			return ErrNoSelection
		}
	}

	m.push(v.Token())

	return nil
}

// OpenCreate shows an empty add form, dropping any stale editing reference.
func (m *Machine) OpenCreate() {
	m.mu.Lock()
	m.editing = uuid.Nil
	m.mu.Unlock()

	m.push(ViewAdd.Token())
}

// OpenEdit shows the add form for an existing record. From the detail view
// the form is stacked on top, so closing it returns to the detail.
func (m *Machine) OpenEdit(id uuid.UUID) {
	m.mu.Lock()
	m.editing = id
	m.mu.Unlock()

	m.push(ViewAdd.Token())
}

func (m *Machine) OpenDetail(id uuid.UUID) {
	m.mu.Lock()
	m.selected = id
	m.mu.Unlock()

	m.push(ViewDetail.Token())
}

// Close dismisses the top overlay. At the root it does nothing.
func (m *Machine) Close() {
	if m.loc.Current() == "" {
		return
	}

	m.loc.Back()
	m.refresh()
}

// Settle clears the editing reference once the add form is no longer shown.
// Callers run it after the dismiss animation so the closing form keeps its
// contents until then.
func (m *Machine) Settle() {
	if ViewOf(m.loc.Current()) == ViewAdd {
		return
	}

	m.mu.Lock()
	m.editing = uuid.Nil
	m.mu.Unlock()

	m.refresh()
}

// Forget drops the selection and editing reference, e.g. after the selected
// record was deleted or the user changed.
func (m *Machine) Forget() {
	m.mu.Lock()
	m.selected = uuid.Nil
	m.editing = uuid.Nil
	m.mu.Unlock()

	m.refresh()
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stateLocked()
}

func (m *Machine) View() View {
	return m.State().View()
}

func (m *Machine) Selected() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.selected
}

func (m *Machine) Editing() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.editing
}

// OnChange calls fn with every new state.
func (m *Machine) OnChange(fn func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		delete(m.subs, id)
	}
}

func (m *Machine) stateLocked() State {
	switch ViewOf(m.loc.Current()) {
	case ViewAdd:
		return Add{Editing: m.editing}
	case ViewCalendar:
		return Calendar{}
	case ViewMonthPicker:
		return MonthPicker{}
	case ViewDetail:
		if m.selected == uuid.Nil {
			return Main{}
		}

		return Detail{Selected: m.selected}
	}

	return Main{}
}

func (m *Machine) push(token string) {
	m.loc.Push(token)
	m.refresh()
}

// refresh notifies subscribers when the derived state changed.
func (m *Machine) refresh() {
	m.mu.Lock()
	s := m.stateLocked()
	if s == m.last {
		m.mu.Unlock()
		return
	}

	m.last = s
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
