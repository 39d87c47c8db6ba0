package view

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// SignInMsg carries the user id a login resolved to.
type SignInMsg struct {
	UserID string
}

// Verifier turns what the user typed into a user id.
type Verifier func(credential string) (string, error)

type LoginModel struct {
	CommonModel
	appName string
	prompt  string
	verify  Verifier

	form       *huh.Form
	credential *string
	err        error
}

// NewLoginModel asks for a credential described by prompt, e.g. an access
// token.
func NewLoginModel(appName, prompt string, verify Verifier) LoginModel {
	m := LoginModel{appName: appName, prompt: prompt, verify: verify}
	m.form = m.buildForm()

	return m
}

func (m *LoginModel) buildForm() *huh.Form {
	m.credential = new(string)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("credential").
				Title(m.prompt).
				EchoMode(huh.EchoModePassword).
				Value(m.credential).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("required")
					}
					return nil
				}),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	userID, err := m.verify(strings.TrimSpace(*m.credential))
	if err != nil {
		m.err = err
		m.form = m.buildForm()

		return m, m.form.Init()
	}

	m.err = nil
	m.form = m.buildForm()

	return m, tea.Batch(m.form.Init(), func() tea.Msg { return SignInMsg{UserID: userID} })
}

func (m LoginModel) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.appName),
		"",
		m.form.View(),
	)

	if m.err != nil {
		content += "\n" + errorStyle.Render("Sign-in failed: "+m.err.Error())
	}

	content += "\n\n" + faintStyle.Render("Enter: sign in | Ctrl+C: quit")

	return lipgloss.NewStyle().Padding(2).Render(content)
}
