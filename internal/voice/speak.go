// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"os/exec"
	"strings"
	"sync"
)

// ExecSpeaker runs a host text-to-speech command, one playback at a time.
type ExecSpeaker struct {
	command string
	args    []string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewExecSpeaker creates a speaker for the given command. The text to
// speak is appended as the final argument.
func NewExecSpeaker(command string, args []string) *ExecSpeaker {
	return &ExecSpeaker{command: command, args: args}
}

// Supported reports whether the speech command resolves on PATH.
func (s *ExecSpeaker) Supported() bool {
	if s.command == "" {
		return false
	}
	_, err := exec.LookPath(s.command)
	return err == nil
}

// Speak starts playback of text. When playback is already running it is
// stopped instead, so the same key works as a toggle. Empty text is a
// no-op.
func (s *ExecSpeaker) Speak(text string) error {
	if !s.Supported() {
		return ErrUnsupported
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	if s.cmd != nil {
		s.stopLocked()
		s.mu.Unlock()
		return nil
	}

	args := append(append([]string{}, s.args...), text)
	cmd := exec.Command(s.command, args...)
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cmd = cmd
	s.mu.Unlock()

	go func() {
		_ = cmd.Wait()
		s.mu.Lock()
		if s.cmd == cmd {
			s.cmd = nil
		}
		s.mu.Unlock()
	}()
	return nil
}

// Stop halts any running playback. Safe to call when idle.
func (s *ExecSpeaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// stopLocked kills the running process. Caller holds s.mu; the Wait
// goroutine clears s.cmd once the process exits.
func (s *ExecSpeaker) stopLocked() {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	s.cmd = nil
}

// Speaking reports whether playback is currently running.
func (s *ExecSpeaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}
