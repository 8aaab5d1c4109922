// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/supportautopilot/autopilot-tui/internal/conversation"
	"github.com/supportautopilot/autopilot-tui/internal/session"
	"github.com/supportautopilot/autopilot-tui/internal/ui/components"
	"github.com/supportautopilot/autopilot-tui/internal/voice"
)

// Update handles messages for the conversation surface.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SendResultMsg:
		m.engine.Complete(msg.Reply, msg.Err)
		m.state = StateReady
		m.spinner.Stop()
		m.statusBar.Activity = m.activity()
		m.refreshViewport(true)
		return m, nil

	case CaptureResultMsg:
		return m.handleCapture(msg)

	case speakPollMsg:
		if m.adapter.Speaker.Speaking() {
			return m, speakPollCmd()
		}
		m.statusBar.Activity = m.activity()
		return m, nil
	}

	var cmds []tea.Cmd
	if cmd := m.spinner.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey dispatches a key press.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.Voice):
		return m.startCapture()

	case key.Matches(msg, m.keyMap.Speak):
		return m.speakLastReply()

	case key.Matches(msg, m.keyMap.Logout):
		return m, session.LogoutCmd(m.manager)

	case key.Matches(msg, m.keyMap.Clear):
		m.engine.Clear()
		m.statusBar.Message = ""
		m.refreshViewport(true)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil
	}

	// Typing is allowed while a reply is pending; only submit blocks.
	if m.state == StateListening {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit opens a send for the typed input. A pending reply or active
// capture keeps the input intact and the send rejected.
func (m Model) submit() (Model, tea.Cmd) {
	if m.state == StateListening {
		return m, nil
	}

	text := m.input.Value()
	opened, err := m.engine.Begin(text)
	if err != nil {
		if errors.Is(err, conversation.ErrSendInFlight) {
			m.statusBar.Message = "Waiting for the previous reply..."
		}
		return m, nil
	}

	m.input.SetValue("")
	m.state = StateSending
	m.statusBar.Message = ""
	m.statusBar.Activity = m.activity()
	m.refreshViewport(true)
	return m, tea.Batch(
		m.spinner.Start(),
		sendCmd(m.engine, opened.Content),
	)
}

// startCapture begins a voice capture if one is not already running.
func (m Model) startCapture() (Model, tea.Cmd) {
	if !m.adapter.Capturer.Supported() {
		if m.adapter.Notice.ShouldShow() {
			m.statusBar.Message = "Voice is not available on this machine."
		}
		return m, nil
	}
	if m.state == StateListening {
		return m, nil
	}

	m.state = StateListening
	m.input.Placeholder = "Listening..."
	m.statusBar.Activity = m.activity()
	return m, captureCmd(m.adapter.Capturer)
}

// handleCapture places the transcript into the input for review. The
// operator sends it explicitly; capture never auto-sends.
func (m Model) handleCapture(msg CaptureResultMsg) (Model, tea.Cmd) {
	m.state = StateReady
	m.input.Placeholder = inputPlaceholder
	m.statusBar.Activity = m.activity()

	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, voice.ErrNoTranscript):
			m.statusBar.Message = "Did not catch that."
		case errors.Is(msg.Err, voice.ErrCaptureActive):
			// The rejected attempt; the active capture keeps running.
			m.state = StateListening
		default:
			m.statusBar.Message = "Voice capture failed."
		}
		return m, nil
	}

	existing := strings.TrimSpace(m.input.Value())
	if existing != "" {
		m.input.SetValue(existing + " " + msg.Transcript)
	} else {
		m.input.SetValue(msg.Transcript)
	}
	m.input.CursorEnd()
	return m, nil
}

// speakLastReply toggles playback of the newest assistant turn.
func (m Model) speakLastReply() (Model, tea.Cmd) {
	msgs := m.engine.Messages()
	var last string
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == conversation.RoleAssistant {
			last = msgs[i].Content
			break
		}
	}
	if last == "" {
		return m, nil
	}

	if err := m.adapter.Speaker.Speak(last); err != nil {
		if errors.Is(err, voice.ErrUnsupported) && m.adapter.Notice.ShouldShow() {
			m.statusBar.Message = "Voice is not available on this machine."
		}
		return m, nil
	}

	m.statusBar.Activity = m.activity()
	if m.adapter.Speaker.Speaking() {
		return m, speakPollCmd()
	}
	return m, nil
}

// activity derives the status bar activity from the surface state.
func (m Model) activity() components.Activity {
	switch {
	case m.state == StateListening:
		return components.ActivityListening
	case m.state == StateSending:
		return components.ActivitySending
	case m.adapter.Speaker.Speaking():
		return components.ActivitySpeaking
	default:
		return components.ActivityIdle
	}
}
