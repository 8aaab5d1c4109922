// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DefaultCaptureTimeout bounds a capture attempt so a stuck recognizer
// cannot hang the console.
const DefaultCaptureTimeout = 30 * time.Second

// ExecCapturer runs a host speech-to-text command and reads the
// transcript from its stdout.
type ExecCapturer struct {
	command string
	args    []string
	timeout time.Duration

	mu     sync.Mutex
	active bool
}

// NewExecCapturer creates a capturer for the given command. The command
// is expected to record until silence and print the transcript.
func NewExecCapturer(command string, args []string, timeout time.Duration) *ExecCapturer {
	if timeout <= 0 {
		timeout = DefaultCaptureTimeout
	}
	return &ExecCapturer{command: command, args: args, timeout: timeout}
}

// Supported reports whether the capture command resolves on PATH.
func (c *ExecCapturer) Supported() bool {
	if c.command == "" {
		return false
	}
	_, err := exec.LookPath(c.command)
	return err == nil
}

// Capture runs the command and returns the normalized transcript. A
// second call while one is running returns ErrCaptureActive without
// touching the running capture.
func (c *ExecCapturer) Capture(ctx context.Context) (string, error) {
	if !c.Supported() {
		return "", ErrUnsupported
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return "", ErrCaptureActive
	}
	c.active = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.active = false
		c.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.command, c.args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}

	transcript := Normalize(stdout.String())
	if transcript == "" {
		return "", ErrNoTranscript
	}
	return transcript, nil
}

// Active reports whether a capture is in progress.
func (c *ExecCapturer) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Normalize collapses recognizer output to a single NFC-normalized line.
func Normalize(raw string) string {
	s := norm.NFC.String(raw)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}
