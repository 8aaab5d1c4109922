// login_cmd.go - Sign-in and sign-out command handlers.
//
// Command: login
// Short:   Sign in and store the session credential
//
// Examples:
//   autopilot login                        Prompt for email and password
//   autopilot login --email agent@shop.com Prompt for password only
//
// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/supportautopilot/autopilot-tui/internal/ui/styles"
)

// HandleLogin signs the operator in and stores the credential.
func HandleLogin(args Args) int {
	if !IsTTY() {
		Fatal("login requires an interactive terminal")
	}

	app, err := NewApp(args)
	if err != nil {
		Fatal("%v", err)
	}
	defer app.Close()

	ctx := context.Background()
	app.Session.Bootstrap(ctx)

	if app.Session.IsAuthenticated() {
		user := app.Session.CurrentUser()
		fmt.Printf("Already signed in as %s. Run 'autopilot logout' first to switch accounts.\n", user.Email)
		return 0
	}

	email := strings.TrimSpace(args.Email)
	if email == "" {
		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		line, rerr := reader.ReadString('\n')
		if rerr != nil {
			Fatal("read email: %v", rerr)
		}
		email = strings.TrimSpace(line)
	}

	password, err := readPassword("Password: ")
	if err != nil {
		Fatal("read password: %v", err)
	}

	_, err = app.Session.Login(ctx, email, password)
	if err != nil {
		errStyle := styles.NewTheme().ErrorText
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		return 1
	}

	user := app.Session.CurrentUser()
	ok := styles.NewTheme().SuccessStyle
	fmt.Println(ok.Render(fmt.Sprintf("Signed in as %s (%s)", user.Email, user.Role)))
	return 0
}

// HandleLogout clears the session locally and best-effort server-side.
func HandleLogout(args Args) int {
	app, err := NewApp(args)
	if err != nil {
		Fatal("%v", err)
	}
	defer app.Close()

	ctx := context.Background()
	app.Session.Bootstrap(ctx)
	app.Session.Logout(ctx)

	if !args.Quiet {
		fmt.Println("Signed out.")
	}
	return 0
}

// readPassword reads a password without echo.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(passBytes), nil
}
