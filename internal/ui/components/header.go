// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/supportautopilot/autopilot-tui/internal/ui/styles"
	"github.com/supportautopilot/autopilot-tui/internal/util"
)

// Header renders the top bar with the product name and signed-in user.
type Header struct {
	theme *styles.Theme
	width int

	Title string
	User  string
}

// NewHeader creates a header with the product title.
func NewHeader(theme *styles.Theme) Header {
	return Header{theme: theme, Title: "Support AutoPilot"}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// View renders the header line.
func (h Header) View() string {
	title := h.theme.HeaderTitle.Render(h.Title)
	if h.User == "" {
		return h.theme.Header.Width(h.width).Render(title)
	}

	user := h.theme.HeaderUser.Render(h.User)
	gap := h.width - lipgloss.Width(title) - lipgloss.Width(user) - 4
	if gap < 1 {
		return h.theme.Header.Width(h.width).Render(title + " " + util.TruncateWidth(user, h.width-lipgloss.Width(title)-5))
	}

	spacer := lipgloss.NewStyle().Width(gap).Render("")
	return h.theme.Header.Width(h.width).Render(title + spacer + user)
}
