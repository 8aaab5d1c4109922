// audit_cmd.go - Session event trail command handler.
//
// Command: audit
// Short:   Show recent session lifecycle events
//
// Examples:
//   autopilot audit show
//   autopilot audit show --lines 50
//   autopilot audit show --json
//
// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/supportautopilot/autopilot-tui/internal/audit"
	"github.com/supportautopilot/autopilot-tui/internal/config"
)

// HandleAudit dispatches audit subcommands.
func HandleAudit(args Args) int {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		return auditShow(parser.FlagIntOrDefault("lines", 20), args.JSON || parser.BoolFlag("json"))
	default:
		fmt.Fprintf(os.Stderr, "Unknown audit subcommand: %s\n", parser.Subcommand())
		fmt.Fprintln(os.Stderr, "Usage: autopilot audit [show] [--lines N] [--json]")
		return 1
	}
}

func auditShow(lines int, asJSON bool) int {
	cfg, err := config.Load()
	if err != nil {
		Fatal("%v", err)
	}
	if !cfg.Audit.Enabled {
		fmt.Fprintln(os.Stderr, "Audit logging is disabled. Enable with: autopilot config set audit.enabled true")
		return 1
	}

	path := cfg.Audit.Path
	if path == "" {
		path, err = audit.DefaultPath()
		if err != nil {
			Fatal("%v", err)
		}
	}

	alog, err := audit.Open(path)
	if err != nil {
		Fatal("open audit log: %v", err)
	}
	defer alog.Close()

	events, err := alog.Recent(lines)
	if err != nil {
		Fatal("read audit log: %v", err)
	}

	if asJSON {
		out, _ := json.MarshalIndent(events, "", "  ")
		fmt.Println(string(out))
		return 0
	}

	if len(events) == 0 {
		fmt.Println("No recorded events.")
		return 0
	}

	for _, e := range events {
		detail := e.Detail
		if detail != "" {
			detail = "  " + detail
		}
		fmt.Printf("%s  %-16s%s\n", e.CreatedAt.Local().Format(time.DateTime), e.Event, detail)
	}
	return 0
}
