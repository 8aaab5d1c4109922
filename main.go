// autopilot - A terminal console for the Support AutoPilot assistant.
//
// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/supportautopilot/autopilot-tui/internal/api"
	"github.com/supportautopilot/autopilot-tui/internal/audit"
	"github.com/supportautopilot/autopilot-tui/internal/auth"
	"github.com/supportautopilot/autopilot-tui/internal/cli"
	"github.com/supportautopilot/autopilot-tui/internal/config"
	"github.com/supportautopilot/autopilot-tui/internal/conversation"
	"github.com/supportautopilot/autopilot-tui/internal/session"
	"github.com/supportautopilot/autopilot-tui/internal/ui/chat"
	"github.com/supportautopilot/autopilot-tui/internal/ui/login"
	"github.com/supportautopilot/autopilot-tui/internal/ui/styles"
	"github.com/supportautopilot/autopilot-tui/internal/voice"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference so the forced sign-out listener, which runs
// on a request goroutine, can deliver a message into the UI loop.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		os.Exit(cli.HandleAsk(args))
	case cli.CmdChat:
		os.Exit(cli.HandleChat(args))
	case cli.CmdLogin:
		os.Exit(cli.HandleLogin(args))
	case cli.CmdLogout:
		os.Exit(cli.HandleLogout(args))
	case cli.CmdStatus:
		os.Exit(cli.HandleStatus(args))
	case cli.CmdConfig:
		os.Exit(cli.HandleConfig(args))
	case cli.CmdAudit:
		os.Exit(cli.HandleAudit(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		runTUI(args)
	}
}

// runTUI starts the full-screen interface.
func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	baseURL := cfg.BaseURL()
	if args.Server != "" {
		baseURL = args.Server
	}

	store, err := auth.NewStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening credential store: %v\n", err)
		os.Exit(1)
	}

	client := api.NewClient(baseURL, store).
		WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second)
	manager := session.NewManager(client, store)

	if cfg.Audit.Enabled {
		path := cfg.Audit.Path
		if path == "" {
			path, _ = audit.DefaultPath()
		}
		if path != "" {
			if alog, aerr := audit.Open(path); aerr == nil {
				manager.WithRecorder(alog)
				defer alog.Close()
			}
		}
	}

	client.OnForcedSignOut(func() {
		manager.ForceSignOut()
		programMu.Lock()
		p := programRef
		programMu.Unlock()
		if p != nil {
			p.Send(session.ForcedSignOutMsg{})
		}
	})

	theme := styles.NewTheme()
	m := newAppModel(theme, cfg, client, manager, baseURL)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Pick up config edits made while the console runs. Only settings
	// that can change mid-session are applied; the server URL needs a
	// restart.
	if watcher, werr := config.NewWatcher(500*time.Millisecond, func(updated *config.Config) {
		p.Send(configReloadedMsg{cfg: updated})
	}); werr == nil {
		if werr := watcher.Watch(); werr == nil {
			defer watcher.Close()
		} else {
			watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running autopilot: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// configReloadedMsg is delivered when the config file changes on disk.
type configReloadedMsg struct {
	cfg *config.Config
}

// appState represents the active surface.
type appState int

const (
	stateLoading appState = iota // Bootstrap in flight
	stateLogin                   // Sign-in form
	stateChat                    // Conversation surface
)

// appModel is the root Bubble Tea model. It owns surface routing: the
// loading state holds until bootstrap resolves, and navigation signals
// from the session manager move between login and chat.
type appModel struct {
	state appState
	theme *styles.Theme

	cfg     *config.Config
	client  *api.Client
	manager *session.Manager
	server  string

	login login.Model
	chat  chat.Model

	width  int
	height int
}

func newAppModel(theme *styles.Theme, cfg *config.Config, client *api.Client, manager *session.Manager, server string) appModel {
	return appModel{
		state:   stateLoading,
		theme:   theme,
		cfg:     cfg,
		client:  client,
		manager: manager,
		server:  server,
		login:   login.New(theme, manager),
	}
}

// newChatSurface builds a fresh conversation surface. Each sign-in gets
// a new conversation seeded with the greeting.
func (m *appModel) newChatSurface() {
	engine := conversation.NewEngine(m.client)
	adapter := voice.NewAdapter(m.cfg.Voice)
	m.chat = chat.New(m.theme, engine, m.manager, adapter, m.server)
	if m.width > 0 {
		m.chat.SetSize(m.width, m.height)
	}
}

// Init kicks off the session bootstrap. No protected surface renders
// until it resolves.
func (m appModel) Init() tea.Cmd {
	return tea.Batch(
		session.BootstrapCmd(m.manager),
		m.login.Init(),
	)
}

// Update routes messages to the active surface and handles navigation.
func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.login.SetSize(msg.Width, msg.Height)
		if m.state == stateChat {
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		// Global quit works on every surface.
		if msg.String() == "ctrl+q" {
			return m, tea.Quit
		}
		if m.state == stateLoading {
			return m, nil
		}

	case session.BootstrappedMsg:
		if msg.Nav == session.NavHome {
			m.newChatSurface()
			m.state = stateChat
			return m, m.chat.Init()
		}
		m.state = stateLogin
		return m, textBlink(m.login)

	case session.LoginResultMsg:
		if msg.Nav == session.NavHome {
			m.newChatSurface()
			m.state = stateChat
			return m, m.chat.Init()
		}
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd

	case session.LoggedOutMsg:
		m.login.Reset("")
		m.state = stateLogin
		return m, textBlink(m.login)

	case session.ForcedSignOutMsg:
		m.login.Reset("Your session expired. Sign in again.")
		m.state = stateLogin
		return m, textBlink(m.login)

	case configReloadedMsg:
		// Voice and UI settings take effect on the next surface build;
		// an active chat keeps its adapters until sign-out.
		m.cfg.Voice = msg.cfg.Voice
		m.cfg.UI = msg.cfg.UI
		return m, nil
	}

	switch m.state {
	case stateLogin:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	case stateChat:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

// textBlink restarts the cursor blink for the login surface.
func textBlink(l login.Model) tea.Cmd {
	return l.Init()
}

// View renders the active surface.
func (m appModel) View() string {
	switch m.state {
	case stateLoading:
		return m.theme.ThinkingText.Render("Connecting...")
	case stateLogin:
		return m.login.View()
	case stateChat:
		return m.chat.View()
	default:
		return ""
	}
}
