// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportautopilot/autopilot-tui/internal/api"
	"github.com/supportautopilot/autopilot-tui/internal/auth"
)

// fakeBackend is a scriptable Backend for state machine tests.
type fakeBackend struct {
	loginToken string
	loginErr   error
	meUser     *api.User
	meErr      error
	logoutErr  error

	loginCalls  int
	meCalls     int
	logoutCalls int
}

func (f *fakeBackend) Login(_ context.Context, _, _ string) (string, error) {
	f.loginCalls++
	return f.loginToken, f.loginErr
}

func (f *fakeBackend) Me(_ context.Context) (*api.User, error) {
	f.meCalls++
	return f.meUser, f.meErr
}

func (f *fakeBackend) Logout(_ context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func newTestStore(t *testing.T) *auth.Store {
	t.Helper()
	return auth.NewStoreWithPath(filepath.Join(t.TempDir(), "token"))
}

func TestBootstrapNoToken(t *testing.T) {
	store := newTestStore(t)
	backend := &fakeBackend{}
	m := NewManager(backend, store)

	nav := m.Bootstrap(context.Background())
	assert.Equal(t, NavLogin, nav)
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Nil(t, m.CurrentUser())
	assert.Equal(t, 0, backend.meCalls, "no verification without a stored credential")
}

func TestBootstrapValidToken(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("tok-1"))

	backend := &fakeBackend{meUser: &api.User{ID: 7, Email: "agent@example.com", Role: "agent"}}
	m := NewManager(backend, store)

	nav := m.Bootstrap(context.Background())
	assert.Equal(t, NavHome, nav)
	assert.Equal(t, StateAuthenticated, m.State())
	require.NotNil(t, m.CurrentUser())
	assert.Equal(t, "agent@example.com", m.CurrentUser().Email)
}

func TestBootstrapRejectedTokenClearsStore(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("stale"))

	backend := &fakeBackend{meErr: api.ErrUnauthorized}
	m := NewManager(backend, store)

	nav := m.Bootstrap(context.Background())
	assert.Equal(t, NavLogin, nav)
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.False(t, store.Present())
}

func TestBootstrapRunsOnce(t *testing.T) {
	store := newTestStore(t)
	backend := &fakeBackend{}
	m := NewManager(backend, store)

	assert.Equal(t, NavLogin, m.Bootstrap(context.Background()))
	assert.Equal(t, NavNone, m.Bootstrap(context.Background()))
}

func TestLoginSuccess(t *testing.T) {
	store := newTestStore(t)
	backend := &fakeBackend{
		loginToken: "tok-new",
		meUser:     &api.User{ID: 1, Email: "a@b.com", FullName: "A B", Role: "admin"},
	}
	m := NewManager(backend, store)
	m.Bootstrap(context.Background())

	nav, err := m.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, NavHome, nav)
	assert.Equal(t, StateAuthenticated, m.State())

	got, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "tok-new", got)
}

func TestLoginFailureSurfacesErrorAndKeepsStore(t *testing.T) {
	store := newTestStore(t)
	backend := &fakeBackend{loginErr: api.ErrInvalidCredentials}
	m := NewManager(backend, store)
	m.Bootstrap(context.Background())

	// Seed after bootstrap so a rejected login provably leaves an
	// existing credential alone rather than passing on an empty store.
	require.NoError(t, store.Set("existing-token"))

	nav, err := m.Login(context.Background(), "a@b.com", "wrong")
	assert.ErrorIs(t, err, api.ErrInvalidCredentials)
	assert.Equal(t, NavNone, nav)
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Equal(t, 0, backend.meCalls)

	got, gerr := store.Get()
	require.NoError(t, gerr)
	assert.Equal(t, "existing-token", got)
}

func TestLoginEmptyFieldsRejectedLocally(t *testing.T) {
	store := newTestStore(t)
	backend := &fakeBackend{}
	m := NewManager(backend, store)
	m.Bootstrap(context.Background())

	_, err := m.Login(context.Background(), "", "pw")
	assert.Error(t, err)
	_, err = m.Login(context.Background(), "a@b.com", "")
	assert.Error(t, err)
	assert.Equal(t, 0, backend.loginCalls)
}

func TestLoginVerificationFailureRollsBack(t *testing.T) {
	store := newTestStore(t)
	backend := &fakeBackend{loginToken: "tok", meErr: errors.New("boom")}
	m := NewManager(backend, store)
	m.Bootstrap(context.Background())

	nav, err := m.Login(context.Background(), "a@b.com", "pw")
	assert.Error(t, err)
	assert.Equal(t, NavNone, nav)
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.False(t, store.Present())
}

func TestLogoutBestEffort(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("tok"))
	backend := &fakeBackend{
		meUser:    &api.User{ID: 1, Email: "a@b.com"},
		logoutErr: errors.New("backend down"),
	}
	m := NewManager(backend, store)
	require.Equal(t, NavHome, m.Bootstrap(context.Background()))

	nav := m.Logout(context.Background())
	assert.Equal(t, NavLogin, nav)
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Nil(t, m.CurrentUser())
	assert.False(t, store.Present())
	assert.Equal(t, 1, backend.logoutCalls)
}

func TestForceSignOut(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("tok"))
	backend := &fakeBackend{meUser: &api.User{ID: 1, Email: "a@b.com"}}
	m := NewManager(backend, store)
	require.Equal(t, NavHome, m.Bootstrap(context.Background()))

	nav := m.ForceSignOut()
	assert.Equal(t, NavLogin, nav)
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Nil(t, m.CurrentUser())
}

type captureRecorder struct {
	events []string
}

func (c *captureRecorder) Record(event, _ string) {
	c.events = append(c.events, event)
}

func TestRecorderReceivesLifecycleEvents(t *testing.T) {
	store := newTestStore(t)
	backend := &fakeBackend{
		loginToken: "tok",
		meUser:     &api.User{ID: 1, Email: "a@b.com"},
	}
	rec := &captureRecorder{}
	m := NewManager(backend, store).WithRecorder(rec)

	m.Bootstrap(context.Background())
	_, err := m.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	m.Logout(context.Background())

	assert.Equal(t, []string{"bootstrap", "login", "logout"}, rec.events)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "unknown", State(99).String())
}
