// ask.go - One-shot question command handler.
//
// Command: ask
// Short:   Ask a single question
//
// Examples:
//   autopilot ask "Where is order 8841?"
//   autopilot ask "Do you ship to Canada?" --json
//
// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/supportautopilot/autopilot-tui/internal/conversation"
)

// HandleAsk sends a single question and prints the reply.
func HandleAsk(args Args) int {
	if args.Query == "" {
		fmt.Fprintln(os.Stderr, "Usage: autopilot ask \"question\"")
		return 1
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
	reply, sendErr := engine.Send(ctx, args.Query)

	if args.JSON {
		out, _ := json.Marshal(map[string]string{
			"message":  args.Query,
			"response": reply.Content,
		})
		fmt.Println(string(out))
	} else {
		displayReply(reply.Content)
	}

	// The transcript already carries the fallback turn; surface the
	// failure through the exit code for scripts.
	if sendErr != nil {
		return 1
	}
	return 0
}
