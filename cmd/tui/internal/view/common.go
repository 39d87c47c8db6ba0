package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/moneynote/internal/export"
	"github.com/MrJamesThe3rd/moneynote/internal/format"
	"github.com/MrJamesThe3rd/moneynote/internal/importer"
	"github.com/MrJamesThe3rd/moneynote/internal/matching"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

const dbTimeout = 5 * time.Second

// Env is what the screens read and write through.
type Env struct {
	Transactions *transaction.Service
	Matching     *matching.Service
	Importer     *importer.Service
	Export       *export.Service
	Locale       format.Locale
	Location     *time.Location
}

type CommonModel struct {
	Width  int
	Height int
}

// BackMsg asks the parent to dismiss the sender.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	panelStyle   = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
)

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

// signed renders an amount with its sign, green for income and red for
// expense.
func signed(locale format.Locale, amount int64, typ transaction.Type) string {
	s := locale.Signed(amount, typ == transaction.TypeIncome)
	if typ == transaction.TypeIncome {
		return incomeStyle.Render(s)
	}

	return expenseStyle.Render(s)
}
