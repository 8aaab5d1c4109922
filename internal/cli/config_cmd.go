// config_cmd.go - Configuration command handler.
//
// Command: config
// Short:   Show or change configuration
//
// Examples:
//   autopilot config show
//   autopilot config set server.base_url https://support.internal
//   autopilot config set ui.theme light
//   autopilot config path
//
// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/supportautopilot/autopilot-tui/internal/config"
)

// HandleConfig dispatches config subcommands.
func HandleConfig(args Args) int {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		return configShow()
	case "set":
		return configSet(parser.Positional(1), parser.Positional(2))
	case "path":
		dir, err := config.ConfigDir()
		if err != nil {
			Fatal("%v", err)
		}
		fmt.Println(dir)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", parser.Subcommand())
		fmt.Fprintln(os.Stderr, "Usage: autopilot config [show|set|path]")
		return 1
	}
}

func configShow() int {
	cfg, err := config.Load()
	if err != nil {
		Fatal("%v", err)
	}

	fmt.Printf("server.base_url      = %s\n", cfg.Server.BaseURL)
	fmt.Printf("server.timeout_secs  = %d\n", cfg.Server.TimeoutSecs)
	fmt.Printf("ui.theme             = %s\n", cfg.UI.Theme)
	fmt.Printf("ui.compact_mode      = %t\n", cfg.UI.CompactMode)
	fmt.Printf("voice.enabled        = %t\n", cfg.Voice.Enabled)
	if cfg.Voice.CaptureCommand != "" {
		fmt.Printf("voice.capture_command = %s\n", cfg.Voice.CaptureCommand)
	}
	if cfg.Voice.SpeakCommand != "" {
		fmt.Printf("voice.speak_command   = %s\n", cfg.Voice.SpeakCommand)
	}
	fmt.Printf("audit.enabled        = %t\n", cfg.Audit.Enabled)
	return 0
}

func configSet(key, value string) int {
	if key == "" || value == "" {
		fmt.Fprintln(os.Stderr, "Usage: autopilot config set KEY VALUE")
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		Fatal("%v", err)
	}

	switch key {
	case "server.base_url":
		cfg.Server.BaseURL = value
	case "server.timeout_secs":
		n, perr := strconv.Atoi(value)
		if perr != nil {
			Fatal("timeout must be a number")
		}
		cfg.Server.TimeoutSecs = n
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.compact_mode":
		cfg.UI.CompactMode = value == "true"
	case "voice.enabled":
		cfg.Voice.Enabled = value == "true"
	case "voice.capture_command":
		cfg.Voice.CaptureCommand = value
	case "voice.speak_command":
		cfg.Voice.SpeakCommand = value
	case "audit.enabled":
		cfg.Audit.Enabled = value == "true"
	default:
		Fatal("unknown config key: %s", key)
	}

	if err := cfg.Validate(); err != nil {
		Fatal("invalid value: %v", err)
	}
	if err := cfg.Save(); err != nil {
		Fatal("save configuration: %v", err)
	}

	fmt.Printf("Set %s = %s\n", key, value)
	return 0
}
