// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice provides optional speech capture and playback built on
// external host commands. When the host lacks the commands the package
// degrades to no-op implementations and the rest of the console keeps
// working text-only.
package voice

import (
	"context"
	"errors"
	"sync"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrUnsupported means the host has no usable speech command.
	ErrUnsupported = errors.New("voice: not supported on this host")
	// ErrCaptureActive means a capture is already running.
	ErrCaptureActive = errors.New("voice: capture already in progress")
	// ErrNoTranscript means capture finished without recognizable speech.
	ErrNoTranscript = errors.New("voice: no speech recognized")
)

// =============================================================================
// INTERFACES
// =============================================================================

// Capturer turns microphone input into a text transcript. Implementations
// must reject a second capture while one is active.
type Capturer interface {
	// Capture blocks until a transcript is ready, the context expires,
	// or capture fails. The transcript is normalized plain text.
	Capture(ctx context.Context) (string, error)
	// Supported reports whether capture can work on this host.
	Supported() bool
}

// Speaker renders text as audible speech. At most one playback runs at a
// time; starting a new one while speaking stops the current one instead.
type Speaker interface {
	// Speak starts playback of text. If playback is already running it
	// is stopped and no new playback starts, matching toggle semantics.
	Speak(text string) error
	// Stop halts any running playback. Safe to call when idle.
	Stop()
	// Speaking reports whether playback is currently running.
	Speaking() bool
	// Supported reports whether playback can work on this host.
	Supported() bool
}

// =============================================================================
// AVAILABILITY NOTICE
// =============================================================================

// Notice tracks the one-time "voice unavailable" message so the operator
// is told once per process, not on every attempt.
type Notice struct {
	mu    sync.Mutex
	shown bool
}

// ShouldShow reports true exactly once.
func (n *Notice) ShouldShow() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.shown {
		return false
	}
	n.shown = true
	return true
}
