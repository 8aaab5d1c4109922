// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/supportautopilot/autopilot-tui/internal/ui/styles"
)

func TestSpinnerLifecycle(t *testing.T) {
	s := NewThinkingSpinner(styles.NewTheme())

	assert.False(t, s.Active())
	assert.Empty(t, s.View())

	cmd := s.Start()
	assert.NotNil(t, cmd)
	assert.True(t, s.Active())
	assert.Contains(t, s.View(), "Thinking")

	s.Stop()
	assert.False(t, s.Active())
	assert.Empty(t, s.View())
}

func TestHeaderShowsUser(t *testing.T) {
	h := NewHeader(styles.NewTheme())
	h.SetWidth(80)

	view := h.View()
	assert.Contains(t, view, "Support AutoPilot")

	h.User = "agent@example.com"
	assert.Contains(t, h.View(), "agent@example.com")
}

func TestStatusBarActivities(t *testing.T) {
	sb := NewStatusBar(styles.NewTheme())
	sb.SetWidth(120)

	sb.Activity = ActivityIdle
	assert.Contains(t, sb.View(), "ready")

	sb.Activity = ActivitySending
	assert.Contains(t, sb.View(), "sending")

	sb.Activity = ActivityListening
	assert.Contains(t, sb.View(), "listening")

	sb.Activity = ActivitySpeaking
	assert.Contains(t, sb.View(), "speaking")
}

func TestStatusBarTransientMessageReplacesShortcuts(t *testing.T) {
	sb := NewStatusBar(styles.NewTheme())
	sb.SetWidth(120)

	sb.Message = "Voice is not available on this machine."
	view := sb.View()
	assert.Contains(t, view, "Voice is not available")
	assert.False(t, strings.Contains(view, "Ctrl+Q"))
}
