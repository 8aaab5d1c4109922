// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for the autopilot console.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdLogin
	CmdLogout
	CmdStatus
	CmdConfig
	CmdAudit
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	Server  string // Override server base URL
	JSON    bool

	// Command-specific
	Query      string
	Email      string
	Subcommand string

	// Raw args remaining after the command word
	Raw []string
}

const usageText = `autopilot - Support AutoPilot admin console

Autopilot is a terminal console for the Support AutoPilot ticketing
assistant. It signs in against the backend, keeps the session alive
across restarts, and carries a conversation with the assistant in
either a full-screen TUI or a line-mode REPL.

Usage:
  autopilot                  Start TUI (default)
  autopilot ask "question"   Ask a single question
  autopilot chat             Interactive line-mode chat
  autopilot login            Sign in and store the session credential
    --email ADDRESS          Email to sign in with (prompted if omitted)
  autopilot logout           Sign out and clear the stored credential
  autopilot status, s        Show session and server status
  autopilot config [show|set|path]  Configuration management
  autopilot audit [show]     Show recent session events
    --lines N                Show last N events (default: 20)
  autopilot version          Show version information
  autopilot help             Show this help

Interactive Commands (during chat):
  /help, /h           Show available commands
  /clear, /c          Clear the conversation
  /speak, /v          Speak the last reply aloud (toggle)
  /listen, /l         Capture a question by voice
  /quit, /q           Exit chat
  Ctrl+D              Exit chat

Global Flags:
  --server URL    Override the configured server URL
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --json          Output in JSON format where supported

Examples:
  autopilot                                Start the TUI
  autopilot login --email agent@shop.com   Sign in
  autopilot ask "Where is order 8841?"     One-shot question
  autopilot chat                           Line-mode conversation
  autopilot config set server.base_url https://support.internal
  autopilot audit show --lines 50          Recent session events

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("autopilot version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]

	remaining, parsedArgs := parseGlobalFlags(args)

	// No command word means the TUI.
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parser := NewArgParser(remaining)
		parsedArgs.Query = strings.TrimSpace(strings.Join(parser.positional, " "))
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "login", "signin":
		parser := NewArgParser(remaining)
		parsedArgs.Email = parser.Flag("email")
		return CmdLogin, parsedArgs

	case "logout", "signout":
		return CmdLogout, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "config":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdConfig, parsedArgs

	case "audit":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdAudit, parsedArgs

	case "version", "--version", "-V":
		return CmdVersion, parsedArgs

	case "help", "--help", "-h":
		return CmdHelp, parsedArgs

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, parsedArgs
	}
}

// parseGlobalFlags extracts flags that apply to every command and
// returns the remaining arguments.
func parseGlobalFlags(args []string) ([]string, Args) {
	var parsed Args
	remaining := make([]string, 0, len(args))

	i := 0
	for i < len(args) {
		switch args[i] {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "--server":
			if i+1 < len(args) {
				parsed.Server = args[i+1]
				i++
			}
		default:
			if strings.HasPrefix(args[i], "--server=") {
				parsed.Server = strings.TrimPrefix(args[i], "--server=")
			} else {
				remaining = append(remaining, args[i])
			}
		}
		i++
	}

	return remaining, parsed
}
