package view

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/moneynote/internal/importer"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFormatSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateConflicts
	importStateResult
)

// ImportModel reads a CSV or JSON file into the signed-in user's records.
type ImportModel struct {
	CommonModel
	env   Env
	owner string

	state          importState
	filePicker     filepicker.Model
	selectedFormat importer.Format
	formatOptions  []importer.Format
	formatCursor   int

	newParams    []transaction.CreateParams
	conflicts    []transaction.Conflict
	conflictList list.Model
	selected     map[int]bool

	status string
	err    error
}

func NewImportModel(env Env, owner string) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		env:           env,
		owner:         owner,
		filePicker:    fp,
		formatOptions: []importer.Format{importer.FormatCSV, importer.FormatJSON},
		selected:      make(map[int]bool),
	}
}

func (m ImportModel) ShortHelp() string {
	if m.state == importStateConflicts {
		return "Space: toggle | a: all | n: none | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (ImportModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateFormatSelect {
			return m.updateFormatSelect(msg)
		}

		if m.state == importStateConflicts {
			return m.updateConflicts(msg)
		}

	case importResultMsg:
		return m.handleImportResult(msg)

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d records.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleImportResult(msg importResultMsg) (ImportModel, tea.Cmd) {
	if msg.err != nil {
		m.state = importStateResult
		m.err = msg.err
		m.status = fmt.Sprintf("Error: %v", msg.err)

		return m, nil
	}

	if len(msg.result.Conflicts) == 0 {
		m.state = importStateResult
		m.status = fmt.Sprintf("Imported %d records.", len(msg.result.Imported))

		return m, nil
	}

	m.newParams = msg.result.New
	m.conflicts = msg.result.Conflicts
	m.selected = make(map[int]bool)
	m.state = importStateConflicts

	items := make([]list.Item, len(m.conflicts))
	for i, c := range m.conflicts {
		items[i] = conflictItem{conflict: c, index: i}
	}

	delegate := conflictDelegate{selected: &m.selected, env: m.env}
	m.conflictList = list.New(items, delegate, 80, 20)
	m.conflictList.Title = "Possible duplicates"
	m.conflictList.SetShowStatusBar(false)
	m.conflictList.SetFilteringEnabled(false)
	m.conflictList.SetShowHelp(false)

	return m, nil
}

func (m ImportModel) handleEsc() (ImportModel, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateFormatSelect
		return m, nil
	case importStateResult:
		m.state = importStateFormatSelect
		m.err = nil
		m.status = ""

		return m, nil
	case importStateConflicts:
		m.state = importStateFormatSelect
		m.conflicts = nil
		m.newParams = nil
		m.selected = make(map[int]bool)

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateFormatSelect(msg tea.KeyMsg) (ImportModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.formatCursor > 0 {
			m.formatCursor--
		}
	case tea.KeyDown:
		if m.formatCursor < len(m.formatOptions)-1 {
			m.formatCursor++
		}
	case tea.KeyEnter:
		m.selectedFormat = m.formatOptions[m.formatCursor]
		m.filePicker.AllowedTypes = []string{"." + string(m.selectedFormat)}
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (ImportModel, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.conflicts {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.conflicts {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	var body string

	switch m.state {
	case importStateFormatSelect:
		body = m.viewFormatSelect()
	case importStateFilePick:
		body = fmt.Sprintf("Select a %s file to import:\n\n%s", m.selectedFormat, m.filePicker.View())
	case importStateImporting:
		body = m.status
	case importStateConflicts:
		body = m.conflictList.View()
	case importStateResult:
		body = m.viewResult()
	}

	return panelStyle.Render(body + "\n\n" + faintStyle.Render(m.ShortHelp()))
}

func (m ImportModel) viewFormatSelect() string {
	s := titleStyle.Render("Import records") + "\n\n"

	for i, f := range m.formatOptions {
		cursor := "  "
		if i == m.formatCursor {
			cursor = "> "
		}

		s += fmt.Sprintf("%s%s\n", cursor, string(f))
	}

	return s
}

func (m ImportModel) viewResult() string {
	if m.err != nil {
		return errorStyle.Render(m.status)
	}

	return successStyle.Render(m.status)
}

type importResultMsg struct {
	result *transaction.ImportResult
	err    error
}

type confirmResultMsg struct {
	count int
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	env, owner, format := m.env, m.owner, m.selectedFormat

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		params, err := env.Importer.Import(format, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		if err := env.Matching.FillCategories(ctx, owner, params); err != nil {
			slog.Warn("failed to suggest categories", "error", err)
		}

		result, err := env.Transactions.ImportBatch(ctx, owner, params)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{result: result}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	svc, owner := m.env.Transactions, m.owner
	newParams := m.newParams
	conflicts := m.conflicts
	selected := m.selected

	return func() tea.Msg {
		allParams := append([]transaction.CreateParams(nil), newParams...)

		for i, c := range conflicts {
			if !selected[i] {
				continue
			}

			allParams = append(allParams, c.Incoming)
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := svc.CreateBatch(ctx, owner, allParams)
		if err != nil {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{count: len(txs)}
	}
}

type conflictItem struct {
	conflict transaction.Conflict
	index    int
}

func (i conflictItem) FilterValue() string { return "" }

type conflictDelegate struct {
	selected *map[int]bool
	env      Env
}

func (d conflictDelegate) Height() int                             { return 3 }
func (d conflictDelegate) Spacing() int                            { return 0 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.conflict.Incoming
	existing := item.conflict.Existing
	locale, loc := d.env.Locale, d.env.Location

	line1 := fmt.Sprintf("%s%s %s  %s  %s",
		cursor, checkbox,
		locale.Date(incoming.Date.In(loc)),
		signed(locale, incoming.Amount, incoming.Type),
		incoming.Description,
	)

	line2 := faintStyle.Render(fmt.Sprintf("      Existing: %s  %s  %s",
		locale.Date(existing.Date.In(loc)),
		locale.Signed(existing.Amount, existing.Type == transaction.TypeIncome),
		existing.Description,
	))

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
