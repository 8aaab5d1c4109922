// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the sign-in surface for the TUI.
package login

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/supportautopilot/autopilot-tui/internal/session"
	"github.com/supportautopilot/autopilot-tui/internal/ui/components"
	"github.com/supportautopilot/autopilot-tui/internal/ui/styles"
)

// =============================================================================
// LOGIN MODEL
// =============================================================================

// field indexes for focus handling.
const (
	fieldEmail = iota
	fieldPassword
	fieldCount
)

// Model is the Bubble Tea model for the sign-in form.
type Model struct {
	theme   *styles.Theme
	manager *session.Manager

	email    textinput.Model
	password textinput.Model
	focus    int

	spinner    components.Spinner
	submitting bool
	errText    string

	width  int
	height int
}

// New creates the sign-in form.
func New(theme *styles.Theme, manager *session.Manager) Model {
	email := textinput.New()
	email.Prompt = ""
	email.Placeholder = "you@company.com"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Prompt = ""
	password.Placeholder = "password"
	password.CharLimit = 256
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return Model{
		theme:    theme,
		manager:  manager,
		email:    email,
		password: password,
		spinner:  components.NewSpinner(theme),
	}
}

// Init satisfies tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Reset clears the form for re-display, keeping the email to ease
// re-authentication after a forced sign-out.
func (m *Model) Reset(notice string) {
	m.password.SetValue("")
	m.submitting = false
	m.errText = notice
	m.focus = fieldPassword
	if strings.TrimSpace(m.email.Value()) == "" {
		m.focus = fieldEmail
	}
	m.applyFocus()
}

// SetSize records the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the sign-in form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			// A login attempt is in flight; ignore input until it
			// resolves so a second submit cannot race the first.
			return m, nil
		}

		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			if msg.String() == "shift+tab" || msg.String() == "up" {
				m.focus = (m.focus + fieldCount - 1) % fieldCount
			} else {
				m.focus = (m.focus + 1) % fieldCount
			}
			m.applyFocus()
			return m, textinput.Blink

		case "enter":
			if m.focus == fieldEmail {
				m.focus = fieldPassword
				m.applyFocus()
				return m, textinput.Blink
			}
			return m.submit()
		}

	case session.LoginResultMsg:
		m.submitting = false
		m.spinner.Stop()
		if msg.Err != nil {
			// The backend's own words, verbatim.
			m.errText = msg.Err.Error()
			m.password.SetValue("")
			return m, nil
		}
		return m, nil
	}

	var cmds []tea.Cmd
	if cmd := m.spinner.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit validates locally and dispatches the login command.
func (m Model) submit() (Model, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.errText = "Email and password are required"
		return m, nil
	}

	m.errText = ""
	m.submitting = true
	return m, tea.Batch(
		m.spinner.Start(),
		session.LoginCmd(m.manager, email, password),
	)
}

// applyFocus moves input focus to the selected field.
func (m *Model) applyFocus() {
	if m.focus == fieldEmail {
		m.email.Focus()
		m.password.Blur()
	} else {
		m.email.Blur()
		m.password.Focus()
	}
}

// Submitting reports whether a login attempt is in flight.
func (m Model) Submitting() bool {
	return m.submitting
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the sign-in form centered in the terminal.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.LoginTitle.Render("Support AutoPilot"))
	b.WriteString("\n\n")

	b.WriteString(m.theme.LoginLabel.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n\n")

	b.WriteString(m.theme.LoginLabel.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n")

	if m.submitting {
		b.WriteString("\n" + m.spinner.View())
	} else if m.errText != "" {
		b.WriteString("\n" + m.theme.ErrorText.Render(m.errText))
	}

	b.WriteString("\n\n")
	b.WriteString(m.theme.LoginHint.Render("Enter to sign in  *  Tab to switch fields  *  Ctrl+Q to quit"))

	box := m.theme.LoginBox.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
