// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportautopilot/autopilot-tui/internal/api"
	"github.com/supportautopilot/autopilot-tui/internal/auth"
	"github.com/supportautopilot/autopilot-tui/internal/session"
	"github.com/supportautopilot/autopilot-tui/internal/ui/styles"
)

type stubBackend struct{}

func (stubBackend) Login(context.Context, string, string) (string, error) { return "tok", nil }
func (stubBackend) Me(context.Context) (*api.User, error) {
	return &api.User{ID: 1, Email: "a@b.com"}, nil
}
func (stubBackend) Logout(context.Context) error { return nil }

func newModel(t *testing.T) Model {
	t.Helper()
	store := auth.NewStoreWithPath(filepath.Join(t.TempDir(), "token"))
	mgr := session.NewManager(stubBackend{}, store)
	return New(styles.NewTheme(), mgr)
}

func typeString(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func keyPress(m Model, key string) (Model, tea.Cmd) {
	var k tea.KeyMsg
	switch key {
	case "enter":
		k = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		k = tea.KeyMsg{Type: tea.KeyTab}
	default:
		k = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	return m.Update(k)
}

func TestEmptySubmitRejectedLocally(t *testing.T) {
	m := newModel(t)

	// Enter on the email field moves focus; enter again submits.
	m, _ = keyPress(m, "enter")
	m, cmd := keyPress(m, "enter")

	assert.Nil(t, cmd)
	assert.False(t, m.Submitting())
	assert.Contains(t, m.View(), "Email and password are required")
}

func TestSubmitDispatchesLogin(t *testing.T) {
	m := newModel(t)
	m = typeString(m, "a@b.com")
	m, _ = keyPress(m, "tab")
	m = typeString(m, "secret")

	m, cmd := keyPress(m, "enter")
	require.NotNil(t, cmd)
	assert.True(t, m.Submitting())
}

func TestInputIgnoredWhileSubmitting(t *testing.T) {
	m := newModel(t)
	m = typeString(m, "a@b.com")
	m, _ = keyPress(m, "tab")
	m = typeString(m, "secret")
	m, _ = keyPress(m, "enter")
	require.True(t, m.Submitting())

	// A second enter must not dispatch another login.
	m, cmd := keyPress(m, "enter")
	assert.Nil(t, cmd)
	assert.True(t, m.Submitting())
}

func TestLoginFailureShowsBackendDetail(t *testing.T) {
	m := newModel(t)
	m = typeString(m, "a@b.com")
	m, _ = keyPress(m, "tab")
	m = typeString(m, "wrong")
	m, _ = keyPress(m, "enter")

	m, _ = m.Update(session.LoginResultMsg{
		Err: errors.New("Incorrect email or password"),
	})

	assert.False(t, m.Submitting())
	assert.Contains(t, m.View(), "Incorrect email or password")
}

func TestResetKeepsEmailClearsPassword(t *testing.T) {
	m := newModel(t)
	m = typeString(m, "a@b.com")
	m, _ = keyPress(m, "tab")
	m = typeString(m, "secret")

	m.Reset("Session expired")
	view := m.View()
	assert.Contains(t, view, "Session expired")
	assert.Equal(t, "a@b.com", m.email.Value())
	assert.Empty(t, m.password.Value())
}
