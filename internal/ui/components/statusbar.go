// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/supportautopilot/autopilot-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Activity is what the console is currently doing, shown on the left of
// the status bar.
type Activity int

const (
	ActivityIdle Activity = iota
	ActivitySending
	ActivityListening
	ActivitySpeaking
)

// StatusBar renders the bottom status line: connection state, current
// activity, and keyboard shortcuts.
type StatusBar struct {
	theme *styles.Theme
	width int

	Server   string
	Activity Activity
	Message  string // transient notice, overrides shortcuts when set
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) StatusBar {
	return StatusBar{theme: theme}
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// shortcuts are the always-available key hints.
var shortcuts = []struct{ key, desc string }{
	{"Enter", "send"},
	{"Ctrl+R", "voice"},
	{"Ctrl+S", "speak"},
	{"Ctrl+L", "clear"},
	{"Ctrl+Q", "quit"},
}

// View renders the status line.
func (s StatusBar) View() string {
	var left string
	switch s.Activity {
	case ActivitySending:
		left = s.theme.StatusBusy.Render("* sending")
	case ActivityListening:
		left = s.theme.Listening.Render("* listening")
	case ActivitySpeaking:
		left = s.theme.Speaking.Render("* speaking")
	default:
		left = s.theme.StatusOnline.Render("* ready")
	}
	if s.Server != "" {
		left += s.theme.ShortcutDesc.Render("  " + s.Server)
	}

	right := s.Message
	if right == "" {
		var parts []string
		for _, sc := range shortcuts {
			parts = append(parts,
				s.theme.ShortcutKey.Render(sc.key)+s.theme.ShortcutDesc.Render(" "+sc.desc))
		}
		right = strings.Join(parts, "  ")
	}

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return s.theme.StatusBar.Width(s.width).Render(left)
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")
	return s.theme.StatusBar.Width(s.width).Render(left + spacer + right)
}
