// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the authentication lifecycle for the console.
package session

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/supportautopilot/autopilot-tui/internal/api"
	"github.com/supportautopilot/autopilot-tui/internal/auth"
)

// =============================================================================
// STATES AND SIGNALS
// =============================================================================

// State represents the session lifecycle state.
type State int

const (
	// StateInitializing is the state before Bootstrap resolves. No
	// protected surface may render while in it.
	StateInitializing State = iota
	// StateUnauthenticated means no valid session exists.
	StateUnauthenticated
	// StateAuthenticating means a login attempt is in flight.
	StateAuthenticating
	// StateAuthenticated means a verified user record is present.
	StateAuthenticated
)

// String returns the state name for display and logs.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Nav is the navigation signal the UI shell must honor after a lifecycle
// transition.
type Nav int

const (
	// NavNone means stay on the current surface.
	NavNone Nav = iota
	// NavLogin means present the login surface.
	NavLogin
	// NavHome means present the home (chat) surface.
	NavHome
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Backend is the slice of the API client the manager needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context) (*api.User, error)
	Logout(ctx context.Context) error
}

// Recorder receives session lifecycle events for the local audit trail.
type Recorder interface {
	Record(event, detail string)
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager orchestrates the authentication state machine on top of the
// request client and token store.
//
// Invariant: a user record is present if and only if the state is
// StateAuthenticated.
type Manager struct {
	mu    sync.Mutex
	state State
	user  *api.User

	bootstrapped bool

	backend  Backend
	store    *auth.Store
	recorder Recorder
}

// NewManager creates a session manager in StateInitializing.
func NewManager(backend Backend, store *auth.Store) *Manager {
	return &Manager{
		state:   StateInitializing,
		backend: backend,
		store:   store,
	}
}

// WithRecorder attaches an audit recorder. A nil recorder is allowed.
func (m *Manager) WithRecorder(rec Recorder) *Manager {
	m.recorder = rec
	return m
}

func (m *Manager) record(event, detail string) {
	if m.recorder != nil {
		m.recorder.Record(event, detail)
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns the authenticated user record, or nil when not
// authenticated.
func (m *Manager) CurrentUser() *api.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// IsAuthenticated reports whether a verified session exists.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Bootstrap verifies any stored credential and resolves the session to a
// terminal state. It runs once per process lifetime; later calls are
// no-ops returning NavNone. It always resolves: the caller is never left
// in a perpetual loading state.
func (m *Manager) Bootstrap(ctx context.Context) Nav {
	m.mu.Lock()
	if m.bootstrapped {
		m.mu.Unlock()
		return NavNone
	}
	m.bootstrapped = true
	m.mu.Unlock()

	if !m.store.Present() {
		m.setState(StateUnauthenticated, nil)
		m.record("bootstrap", "no stored credential")
		return NavLogin
	}

	user, err := m.backend.Me(ctx)
	if err != nil {
		// The request client already cleared the credential on 401;
		// clear here too so a network failure during verification
		// does not strand a token that may be bad.
		_ = m.store.Clear()
		m.setState(StateUnauthenticated, nil)
		m.record("bootstrap", "stored credential rejected")
		return NavLogin
	}

	m.setState(StateAuthenticated, user)
	m.record("bootstrap", "session restored for "+user.Email)
	return NavHome
}

// Login authenticates with the backend. On success the returned credential
// is stored, the user record fetched, and the caller is directed home. On
// failure the state remains unauthenticated, the stored credential is left
// untouched, and the failure reason is returned for display. No automatic
// retry; retries are the operator's choice.
func (m *Manager) Login(ctx context.Context, email, password string) (Nav, error) {
	if email == "" || password == "" {
		return NavNone, errors.New("email and password are required")
	}

	m.mu.Lock()
	if m.state == StateAuthenticating {
		m.mu.Unlock()
		return NavNone, errors.New("a login attempt is already in flight")
	}
	m.state = StateAuthenticating
	m.mu.Unlock()

	token, err := m.backend.Login(ctx, email, password)
	if err != nil {
		m.setState(StateUnauthenticated, nil)
		m.record("login_failed", email)
		return NavNone, err
	}

	if err := m.store.Set(token); err != nil {
		m.setState(StateUnauthenticated, nil)
		return NavNone, err
	}

	user, err := m.backend.Me(ctx)
	if err != nil {
		_ = m.store.Clear()
		m.setState(StateUnauthenticated, nil)
		m.record("login_failed", email)
		return NavNone, err
	}

	m.setState(StateAuthenticated, user)
	m.record("login", user.Email)
	return NavHome, nil
}

// Logout ends the session. Backend notification is best-effort; local
// state is cleared regardless, so this operation cannot fail from the
// caller's perspective.
func (m *Manager) Logout(ctx context.Context) Nav {
	_ = m.backend.Logout(ctx)

	_ = m.store.Clear()
	m.setState(StateUnauthenticated, nil)
	m.record("logout", "")
	return NavLogin
}

// ForceSignOut transitions to unauthenticated after the request client
// observed a 401. Wire it to api.Client.OnForcedSignOut; the credential is
// already cleared when it runs.
func (m *Manager) ForceSignOut() Nav {
	m.setState(StateUnauthenticated, nil)
	m.record("forced_signout", "credential rejected by backend")
	return NavLogin
}

// setState applies a transition while preserving the user/state invariant.
func (m *Manager) setState(state State, user *api.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	if state == StateAuthenticated {
		m.user = user
	} else {
		m.user = nil
	}
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// BootstrappedMsg reports the result of Bootstrap.
type BootstrappedMsg struct {
	Nav  Nav
	User *api.User
}

// LoginResultMsg reports the result of a login attempt.
type LoginResultMsg struct {
	Nav Nav
	Err error
}

// LoggedOutMsg reports a completed logout.
type LoggedOutMsg struct {
	Nav Nav
}

// ForcedSignOutMsg is delivered when the backend rejected the credential
// mid-session. The shell must present the login surface; the conversation
// surface must stop accepting sends.
type ForcedSignOutMsg struct{}

// BootstrapCmd runs Bootstrap off the UI goroutine.
func BootstrapCmd(m *Manager) tea.Cmd {
	return func() tea.Msg {
		nav := m.Bootstrap(context.Background())
		return BootstrappedMsg{Nav: nav, User: m.CurrentUser()}
	}
}

// LoginCmd runs Login off the UI goroutine.
func LoginCmd(m *Manager, email, password string) tea.Cmd {
	return func() tea.Msg {
		nav, err := m.Login(context.Background(), email, password)
		return LoginResultMsg{Nav: nav, Err: err}
	}
}

// LogoutCmd runs Logout off the UI goroutine.
func LogoutCmd(m *Manager) tea.Cmd {
	return func() tea.Msg {
		nav := m.Logout(context.Background())
		return LoggedOutMsg{Nav: nav}
	}
}
