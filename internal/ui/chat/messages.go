// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

// messages.go - Bubble Tea messages and commands for the chat surface.
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/supportautopilot/autopilot-tui/internal/conversation"
	"github.com/supportautopilot/autopilot-tui/internal/voice"
)

// =============================================================================
// MESSAGES
// =============================================================================

// SendResultMsg carries the backend reply for an in-flight send.
type SendResultMsg struct {
	Reply string
	Err   error
}

// CaptureResultMsg carries the voice transcript, or the capture failure.
type CaptureResultMsg struct {
	Transcript string
	Err        error
}

// speakPollMsg drives the speaking indicator while playback runs.
type speakPollMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// sendCmd dispatches the opened turn to the backend off the UI
// goroutine. The engine pairs the result with the turn in Complete.
func sendCmd(engine *conversation.Engine, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := engine.Dispatch(context.Background(), text)
		return SendResultMsg{Reply: reply, Err: err}
	}
}

// captureCmd runs one voice capture off the UI goroutine.
func captureCmd(capturer voice.Capturer) tea.Cmd {
	return func() tea.Msg {
		transcript, err := capturer.Capture(context.Background())
		return CaptureResultMsg{Transcript: transcript, Err: err}
	}
}

// speakPollCmd re-checks playback state while the speaker runs so the
// status bar indicator clears when playback ends.
func speakPollCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return speakPollMsg{}
	})
}
