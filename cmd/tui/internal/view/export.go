package view

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/moneynote/internal/export"
	"github.com/MrJamesThe3rd/moneynote/internal/ledger"
)

type exportState int

const (
	exportStateForm exportState = iota
	exportStateExporting
	exportStateResult
)

type exportValues struct {
	month string
	path  string
}

// ExportModel writes a month statement and summary to a directory.
type ExportModel struct {
	CommonModel
	env  Env
	book *ledger.Book

	state   exportState
	err     error
	form    *huh.Form
	values  *exportValues
	spinner spinner.Model
	files   []string
	summary string
}

func NewExportModel(env Env, book *ledger.Book, month ledger.Month) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ExportModel{
		env:     env,
		book:    book,
		values:  &exportValues{month: month.String(), path: "./exports"},
		spinner: s,
	}
	m.form = m.buildForm()

	return m
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (ExportModel, tea.Cmd) {
	switch m.state {
	case exportStateForm:
		return m.updateForm(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) updateForm(msg tea.Msg) (ExportModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	month, err := ledger.ParseMonth(m.values.month)
	if err != nil {
		m.state = exportStateResult
		m.err = err

		return m, nil
	}

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(month, m.values.path))
}

func (m ExportModel) updateExporting(msg tea.Msg) (ExportModel, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.files = result.files
		m.summary = result.summary

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ExportModel) buildForm() *huh.Form {
	months := m.book.AvailableMonths()
	options := make([]huh.Option[string], len(months))

	for i, mo := range months {
		options[i] = huh.NewOption(m.env.Locale.MonthLabel(mo.Year, mo.Month), mo.String())
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Month").
				Options(options...).
				Value(&m.values.month),
			huh.NewInput().
				Title("Output directory").
				Description("Created if it doesn't exist").
				Placeholder("./exports").
				Value(&m.values.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateForm:
		return panelStyle.Render(titleStyle.Render("Export") + "\n\n" + m.form.View())
	case exportStateExporting:
		return panelStyle.Render(fmt.Sprintf("%s Writing statement...", m.spinner.View()))
	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return panelStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + faintStyle.Render("Esc: close"))
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		successStyle.Bold(true).Render("Export complete"),
		"",
		faintStyle.Render(fmt.Sprint(m.files)),
		"",
		m.summary,
		faintStyle.Render("Esc: close"),
	))
}

type exportResultMsg struct {
	files   []string
	summary string
	err     error
}

func (m ExportModel) runExportCmd(month ledger.Month, dir string) tea.Cmd {
	svc, book := m.env.Export, m.book

	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportResultMsg{err: fmt.Errorf("creating output directory: %w", err)}
		}

		statement := filepath.Join(dir, fmt.Sprintf("statement_%s.csv", month))

		f, err := os.Create(statement)
		if err != nil {
			return exportResultMsg{err: fmt.Errorf("creating statement: %w", err)}
		}

		if err := export.WriteStatement(book, month, f); err != nil {
			f.Close()
			return exportResultMsg{err: err}
		}

		if err := f.Close(); err != nil {
			return exportResultMsg{err: fmt.Errorf("closing statement: %w", err)}
		}

		summary := svc.Summary(book, month)
		summaryPath := filepath.Join(dir, fmt.Sprintf("summary_%s.txt", month))

		if err := os.WriteFile(summaryPath, []byte(summary), 0o644); err != nil {
			return exportResultMsg{err: fmt.Errorf("writing summary: %w", err)}
		}

		return exportResultMsg{files: []string{statement, summaryPath}, summary: summary}
	}
}
