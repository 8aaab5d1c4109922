// chat.go - Interactive line-mode chat command handler.
//
// Handles the "autopilot chat" command which provides an interactive
// REPL for conversing with the support assistant.
//
// Command: chat
// Short:   Start an interactive chat session
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Clear the conversation
//   /speak, /v          Speak the last reply aloud (toggle)
//   /listen, /l         Capture a question by voice into the prompt
//   /quit, /q           Exit chat
//   Ctrl+D              Exit chat
//
// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/supportautopilot/autopilot-tui/internal/config"
	"github.com/supportautopilot/autopilot-tui/internal/conversation"
	"github.com/supportautopilot/autopilot-tui/internal/ui/styles"
	"github.com/supportautopilot/autopilot-tui/internal/voice"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt. Supports
// history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	return c.ReadInputWithDraft(prompt, "")
}

// ReadInputWithDraft reads a line pre-filled with draft text the operator
// can edit or clear before submitting.
func (c *ChatCLI) ReadInputWithDraft(prompt, draft string) (string, error) {
	var input string
	var err error
	if draft == "" {
		input, err = c.line.Prompt(prompt)
	} else {
		input, err = c.line.PromptWithSuggestion(prompt, draft, utf8.RuneCountInString(draft))
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// HandleChat runs the interactive line-mode chat loop.
func HandleChat(args Args) int {
	if !IsTTY() {
		Fatal("chat requires an interactive terminal")
	}

	app, err := NewApp(args)
	if err != nil {
		Fatal("%v", err)
	}
	defer app.Close()

	ctx := context.Background()
	app.Session.Bootstrap(ctx)
	if !app.Session.IsAuthenticated() {
		fmt.Fprintln(os.Stderr, "Not signed in. Run 'autopilot login' first.")
		return 1
	}

	engine := conversation.NewEngine(app.Client)
	adapter := voice.NewAdapter(app.Config.Voice)
	input := NewChatCLI()
	defer input.Close()

	if !args.Quiet {
		user := app.Session.CurrentUser()
		fmt.Println(welcomeStyle.Render("Support AutoPilot"))
		fmt.Println(infoStyle.Render(fmt.Sprintf("Signed in as %s. Type /help for commands.", user.Email)))
		fmt.Println()
		displayReply(conversation.Greeting)
	}

	var draft string
	for {
		line, rerr := input.ReadInputWithDraft(promptStyle.Render("you> "), draft)
		draft = ""
		if rerr != nil {
			if rerr == liner.ErrPromptAborted {
				continue
			}
			// io.EOF on Ctrl+D
			fmt.Println()
			return 0
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "/") {
			d, quit := handleChatCommand(trimmed, engine, adapter)
			if quit {
				return 0
			}
			draft = d
			continue
		}

		if !app.Session.IsAuthenticated() {
			fmt.Println(warningStyle.Render("Session expired. Run 'autopilot login' to sign in again."))
			return 1
		}

		sendAndDisplay(ctx, engine, trimmed)
	}
}

// sendAndDisplay runs one send and prints the assistant turn.
func sendAndDisplay(ctx context.Context, engine *conversation.Engine, text string) {
	reply, err := engine.Send(ctx, text)
	if errors.Is(err, conversation.ErrSendInFlight) {
		fmt.Println(warningStyle.Render("Still waiting on the previous reply."))
		return
	}
	displayReply(reply.Content)
}

// handleChatCommand dispatches a /command. Returns a draft to pre-fill
// the next prompt with, and true to exit chat.
func handleChatCommand(cmd string, engine *conversation.Engine, adapter *voice.Adapter) (string, bool) {
	switch strings.ToLower(strings.Fields(cmd)[0]) {
	case "/quit", "/q", "/exit":
		return "", true

	case "/help", "/h":
		fmt.Println(commandStyle.Render("Commands:"))
		fmt.Println("  /clear, /c    Clear the conversation")
		fmt.Println("  /speak, /v    Speak the last reply aloud (toggle)")
		fmt.Println("  /listen, /l   Capture a question by voice into the prompt")
		fmt.Println("  /quit, /q     Exit chat")

	case "/clear", "/c":
		engine.Clear()
		fmt.Println(infoStyle.Render("Conversation cleared."))

	case "/speak", "/v":
		speakLastReply(engine, adapter)

	case "/listen", "/l":
		return captureQuestion(adapter), false

	default:
		fmt.Println(warningStyle.Render("Unknown command. Type /help for commands."))
	}
	return "", false
}

// speakLastReply toggles playback of the most recent assistant turn.
func speakLastReply(engine *conversation.Engine, adapter *voice.Adapter) {
	msgs := engine.Messages()
	var last string
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == conversation.RoleAssistant {
			last = msgs[i].Content
			break
		}
	}
	if last == "" {
		fmt.Println(infoStyle.Render("Nothing to speak yet."))
		return
	}

	if err := adapter.Speaker.Speak(last); err != nil {
		if errors.Is(err, voice.ErrUnsupported) && adapter.Notice.ShouldShow() {
			fmt.Println(warningStyle.Render("Voice is not available on this machine."))
		}
	}
}

// captureQuestion captures one voice utterance and returns it so the
// transcript lands in the next prompt. The operator edits and submits;
// nothing is sent on their behalf.
func captureQuestion(adapter *voice.Adapter) string {
	if !adapter.Capturer.Supported() {
		if adapter.Notice.ShouldShow() {
			fmt.Println(warningStyle.Render("Voice is not available on this machine."))
		}
		return ""
	}

	fmt.Println(infoStyle.Render("Listening..."))
	transcript, err := adapter.Capturer.Capture(context.Background())
	if err != nil {
		switch {
		case errors.Is(err, voice.ErrNoTranscript):
			fmt.Println(infoStyle.Render("Did not catch that."))
		case errors.Is(err, voice.ErrCaptureActive):
			fmt.Println(warningStyle.Render("Already listening."))
		default:
			fmt.Println(warningStyle.Render("Voice capture failed."))
		}
		return ""
	}
	return transcript
}
