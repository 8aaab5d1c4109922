// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/supportautopilot/autopilot-tui/internal/conversation"
)

// View renders the conversation surface.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header.View())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	inputLine := m.input.View()
	if m.state == StateSending {
		inputLine = m.input.View() + "  " + m.spinner.View()
	}
	b.WriteString(m.theme.InputContainer.Width(m.width).Render(inputLine))
	b.WriteString("\n")
	b.WriteString(m.statusBar.View())

	return b.String()
}

// refreshViewport re-renders the transcript into the viewport. When
// follow is true the view jumps to the newest turn.
func (m *Model) refreshViewport(follow bool) {
	msgs := m.engine.Messages()
	if len(msgs) == 0 {
		m.viewport.SetContent(m.theme.InputPlaceholder.Render("No messages yet. Say hello!"))
		return
	}

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	if follow {
		m.viewport.GotoBottom()
	}
}

// renderMessage renders one turn as a labeled bubble.
func (m *Model) renderMessage(msg conversation.Message) string {
	ts := m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	width := m.theme.BubbleWidth()

	if msg.Role == conversation.RoleUser {
		label := m.theme.UserLabel.Render("You") + " " + ts
		bubble := m.theme.UserBubble.MaxWidth(width).Render(msg.Content)
		return lipgloss.JoinVertical(lipgloss.Right, label, bubble)
	}

	label := m.theme.AssistantLabel.Render("AutoPilot") + " " + ts
	bubble := m.theme.AssistantBubble.MaxWidth(width).Render(msg.Content)
	return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
}
