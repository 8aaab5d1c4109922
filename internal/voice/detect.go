// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"os/exec"
	"runtime"
	"time"

	"github.com/supportautopilot/autopilot-tui/internal/config"
)

// speakCandidates lists host TTS commands tried in order when the config
// does not name one.
func speakCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"say"}
	case "windows":
		return []string{"powershell"}
	default:
		return []string{"espeak-ng", "espeak", "spd-say", "festival"}
	}
}

// firstOnPath returns the first candidate that resolves, or "".
func firstOnPath(candidates []string) string {
	for _, c := range candidates {
		if _, err := exec.LookPath(c); err == nil {
			return c
		}
	}
	return ""
}

// Adapter bundles capture and playback behind a single handle the UI
// consumes.
type Adapter struct {
	Capturer Capturer
	Speaker  Speaker
	Notice   Notice
}

// NewAdapter builds the voice adapter from configuration. Voice disabled
// in config, or no usable command, yields no-op implementations; the
// caller never gets a nil adapter.
func NewAdapter(cfg config.VoiceConfig) *Adapter {
	a := &Adapter{Capturer: noopCapturer{}, Speaker: &noopSpeaker{}}
	if !cfg.Enabled {
		return a
	}

	if cfg.CaptureCommand != "" {
		timeout := time.Duration(cfg.CaptureTimeoutSecs) * time.Second
		ec := NewExecCapturer(cfg.CaptureCommand, cfg.CaptureArgs, timeout)
		if ec.Supported() {
			a.Capturer = ec
		}
	}

	speakCmd := cfg.SpeakCommand
	speakArgs := cfg.SpeakArgs
	if speakCmd == "" {
		speakCmd = firstOnPath(speakCandidates())
		if speakCmd == "powershell" {
			speakArgs = []string{"-Command", "Add-Type -AssemblyName System.Speech; (New-Object System.Speech.Synthesis.SpeechSynthesizer).Speak($args[0])"}
		}
	}
	if speakCmd != "" {
		sp := NewExecSpeaker(speakCmd, speakArgs)
		if sp.Supported() {
			a.Speaker = sp
		}
	}
	return a
}

// Available reports whether any voice feature works on this host.
func (a *Adapter) Available() bool {
	return a.Capturer.Supported() || a.Speaker.Supported()
}
