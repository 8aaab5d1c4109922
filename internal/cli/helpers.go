// helpers.go - Shared wiring for CLI command handlers.
//
// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/supportautopilot/autopilot-tui/internal/api"
	"github.com/supportautopilot/autopilot-tui/internal/audit"
	"github.com/supportautopilot/autopilot-tui/internal/auth"
	"github.com/supportautopilot/autopilot-tui/internal/config"
	"github.com/supportautopilot/autopilot-tui/internal/session"
)

// App bundles the collaborators every command handler needs.
type App struct {
	Config  *config.Config
	Store   *auth.Store
	Client  *api.Client
	Session *session.Manager
	Audit   *audit.Log
}

// NewApp wires configuration, credential store, request client, and
// session manager for a command invocation. The audit log is optional;
// a failure to open it is reported and ignored.
func NewApp(args Args) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	baseURL := cfg.BaseURL()
	if args.Server != "" {
		baseURL = args.Server
	}

	store, err := auth.NewStore()
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	client := api.NewClient(baseURL, store).
		WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second)

	mgr := session.NewManager(client, store)

	app := &App{
		Config:  cfg,
		Store:   store,
		Client:  client,
		Session: mgr,
	}

	if cfg.Audit.Enabled {
		path := cfg.Audit.Path
		if path == "" {
			path, err = audit.DefaultPath()
		}
		if err == nil {
			if alog, aerr := audit.Open(path); aerr == nil {
				app.Audit = alog
				mgr.WithRecorder(alog)
			} else if args.Verbose {
				log.Printf("audit log unavailable: %v", aerr)
			}
		}
	}

	client.OnForcedSignOut(func() {
		mgr.ForceSignOut()
	})

	return app, nil
}

// Close releases resources held by the app.
func (a *App) Close() {
	if a.Audit != nil {
		a.Audit.Close()
	}
}

// Fatal prints an error message and exits with status 1.
func Fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
