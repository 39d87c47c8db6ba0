package navigation_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/moneynote/internal/navigation"
)

func newMachine(t *testing.T) (*navigation.Machine, *navigation.History) {
	t.Helper()

	h := navigation.NewHistory()
	m := navigation.New(h)
	t.Cleanup(m.Stop)

	return m, h
}

func TestViewOf(t *testing.T) {
	tests := []struct {
		token string
		want  navigation.View
	}{
		{"", navigation.ViewMain},
		{"#add", navigation.ViewAdd},
		{"#calendar", navigation.ViewCalendar},
		{"#month", navigation.ViewMonthPicker},
		{"#detail", navigation.ViewDetail},
		{"#settings", navigation.ViewMain},
		{"add", navigation.ViewMain},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, navigation.ViewOf(tt.token))
		})
	}
}

func TestMachine_StartsAtMain(t *testing.T) {
	m, _ := newMachine(t)

	assert.Equal(t, navigation.Main{}, m.State())
}

func TestMachine_FollowsExistingToken(t *testing.T) {
	h := navigation.NewHistory()
	h.Push("#calendar")

	m := navigation.New(h)
	defer m.Stop()

	assert.Equal(t, navigation.ViewCalendar, m.View())
}

func TestMachine_OpenAndClose(t *testing.T) {
	m, h := newMachine(t)

	require.NoError(t, m.Open(navigation.ViewCalendar))
	assert.Equal(t, navigation.Calendar{}, m.State())
	assert.Equal(t, "#calendar", h.Current())

	m.Close()
	assert.Equal(t, navigation.Main{}, m.State())
	assert.Equal(t, 0, h.Depth())

	m.Close()
	assert.Equal(t, 0, h.Depth(), "closing at the root never leaves the app")
}

func TestMachine_DetailNeedsSelection(t *testing.T) {
	m, h := newMachine(t)

	assert.ErrorIs(t, m.Open(navigation.ViewDetail), navigation.ErrNoSelection)
	assert.Equal(t, "", h.Current())

	h.Push("#detail")
	assert.Equal(t, navigation.Main{}, m.State(), "detail without a selection shows main")
}

func TestMachine_EditCloseSettle(t *testing.T) {
	m, _ := newMachine(t)
	id := uuid.New()

	m.OpenDetail(id)
	assert.Equal(t, navigation.Detail{Selected: id}, m.State())

	m.OpenEdit(id)
	assert.Equal(t, navigation.Add{Editing: id}, m.State())

	m.Close()
	assert.Equal(t, navigation.Detail{Selected: id}, m.State(), "edit stacks on top of detail")
	assert.Equal(t, id, m.Editing(), "editing survives until settle")

	m.Settle()
	assert.Equal(t, uuid.Nil, m.Editing())
}

func TestMachine_SettleKeepsEditingWhileFormOpen(t *testing.T) {
	m, _ := newMachine(t)
	id := uuid.New()

	m.OpenEdit(id)
	m.Settle()

	assert.Equal(t, id, m.Editing())
}

func TestMachine_CreateClearsStaleEdit(t *testing.T) {
	m, _ := newMachine(t)
	id := uuid.New()

	m.OpenEdit(id)
	m.Close()

	m.OpenCreate()
	assert.Equal(t, navigation.Add{}, m.State())
	assert.Equal(t, uuid.Nil, m.Editing())
}

func TestMachine_OpenAddFromEditSwitchesToCreate(t *testing.T) {
	m, h := newMachine(t)

	m.OpenEdit(uuid.New())
	require.NoError(t, m.Open(navigation.ViewAdd))

	assert.Equal(t, navigation.Add{}, m.State())
	assert.Equal(t, 1, h.Depth())
}

func TestMachine_ExternalBack(t *testing.T) {
	m, h := newMachine(t)

	var states []navigation.State
	cancel := m.OnChange(func(s navigation.State) { states = append(states, s) })
	defer cancel()

	require.NoError(t, m.Open(navigation.ViewMonthPicker))
	h.Back()

	assert.Equal(t, []navigation.State{navigation.MonthPicker{}, navigation.Main{}}, states)
}

func TestMachine_AtMostOneOverlay(t *testing.T) {
	m, _ := newMachine(t)

	require.NoError(t, m.Open(navigation.ViewCalendar))
	require.NoError(t, m.Open(navigation.ViewMonthPicker))

	assert.Equal(t, navigation.MonthPicker{}, m.State())

	m.Close()
	assert.Equal(t, navigation.Calendar{}, m.State())
}

func TestHistory_PushSameTokenIsNoop(t *testing.T) {
	h := navigation.NewHistory()

	var calls int
	cancel := h.Subscribe(func(string) { calls++ })

	h.Push("#add")
	h.Push("#add")
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, h.Depth())

	cancel()
	h.Back()
	assert.Equal(t, 1, calls)
}
