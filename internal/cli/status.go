// status.go - Session and server status command handler.
//
// Command: status
// Short:   Show session and server status
// Aliases: s
//
// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/supportautopilot/autopilot-tui/internal/ui/styles"
)

// statusInfo is the JSON shape for --json output.
type statusInfo struct {
	Server        string `json:"server"`
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	FullName      string `json:"full_name,omitempty"`
	Role          string `json:"role,omitempty"`
	Version       string `json:"version"`
}

// HandleStatus shows who is signed in and which server is configured.
func HandleStatus(args Args) int {
	app, err := NewApp(args)
	if err != nil {
		Fatal("%v", err)
	}
	defer app.Close()

	app.Session.Bootstrap(context.Background())

	info := statusInfo{
		Server:        app.Config.BaseURL(),
		Authenticated: app.Session.IsAuthenticated(),
		Version:       Version,
	}
	if user := app.Session.CurrentUser(); user != nil {
		info.Email = user.Email
		info.FullName = user.FullName
		info.Role = user.Role
	}
	if args.Server != "" {
		info.Server = args.Server
	}

	if args.JSON {
		out, _ := json.MarshalIndent(info, "", "  ")
		fmt.Println(string(out))
		return 0
	}

	th := styles.NewTheme()
	labelStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(10)

	fmt.Println(th.HeaderTitle.Render("Support AutoPilot"))
	fmt.Printf("%s %s\n", labelStyle.Render("Server:"), info.Server)
	if info.Authenticated {
		fmt.Printf("%s %s\n", labelStyle.Render("Session:"), th.SuccessStyle.Render("signed in"))
		fmt.Printf("%s %s\n", labelStyle.Render("Account:"), info.Email)
		if info.FullName != "" {
			fmt.Printf("%s %s\n", labelStyle.Render("Name:"), info.FullName)
		}
		fmt.Printf("%s %s\n", labelStyle.Render("Role:"), info.Role)
	} else {
		fmt.Printf("%s %s\n", labelStyle.Render("Session:"), th.WarningStyle.Render("signed out"))
	}
	fmt.Printf("%s %s\n", labelStyle.Render("Version:"), info.Version)
	return 0
}
