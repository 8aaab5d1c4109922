// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import "context"

// noopCapturer stands in when no capture command is available.
type noopCapturer struct{}

func (noopCapturer) Capture(context.Context) (string, error) { return "", ErrUnsupported }
func (noopCapturer) Supported() bool                         { return false }

// noopSpeaker stands in when no speech command is available.
type noopSpeaker struct{}

func (*noopSpeaker) Speak(string) error { return ErrUnsupported }
func (*noopSpeaker) Stop()              {}
func (*noopSpeaker) Speaking() bool     { return false }
func (*noopSpeaker) Supported() bool    { return false }
