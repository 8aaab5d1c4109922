// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/supportautopilot/autopilot-tui/internal/conversation"
	"github.com/supportautopilot/autopilot-tui/internal/session"
	"github.com/supportautopilot/autopilot-tui/internal/ui/components"
	"github.com/supportautopilot/autopilot-tui/internal/ui/styles"
	"github.com/supportautopilot/autopilot-tui/internal/voice"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat surface.
type State int

const (
	StateReady     State = iota // Ready for input
	StateSending                // Awaiting the assistant reply
	StateListening              // Voice capture in progress
)

const inputPlaceholder = "Type a message..."

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the conversation surface.
type Model struct {
	state State

	theme *styles.Theme

	width  int
	height int

	engine  *conversation.Engine
	manager *session.Manager
	adapter *voice.Adapter

	viewport  viewport.Model
	input     textinput.Model
	spinner   components.Spinner
	header    components.Header
	statusBar components.StatusBar

	keyMap KeyMap
}

// New creates the conversation surface.
func New(theme *styles.Theme, engine *conversation.Engine, manager *session.Manager, adapter *voice.Adapter, server string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = inputPlaceholder
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	header := components.NewHeader(theme)
	if user := manager.CurrentUser(); user != nil {
		header.User = user.Email
	}

	statusBar := components.NewStatusBar(theme)
	statusBar.Server = server

	m := Model{
		state:     StateReady,
		theme:     theme,
		engine:    engine,
		manager:   manager,
		adapter:   adapter,
		viewport:  vp,
		input:     ti,
		spinner:   components.NewThinkingSpinner(theme),
		header:    header,
		statusBar: statusBar,
		keyMap:    DefaultKeyMap(),
	}
	m.refreshViewport(true)
	return m
}

// Init satisfies tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// State returns the current surface state.
func (m Model) State() State {
	return m.state
}

// RefreshUser updates the header after authentication changes.
func (m *Model) RefreshUser() {
	if user := m.manager.CurrentUser(); user != nil {
		m.header.User = user.Email
	} else {
		m.header.User = ""
	}
}

// SetSize lays the surface out for the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)
	m.header.SetWidth(width)
	m.statusBar.SetWidth(width)

	// Header, input and status bar each take one line, plus input border.
	contentHeight := height - 4
	if contentHeight < 3 {
		contentHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = contentHeight
	m.input.Width = width - 4
	m.refreshViewport(false)
}
