// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"sync"
	"testing"
	"time"
)

func TestWatcherCloseWithoutWatch(t *testing.T) {
	// The caller closes the watcher when Watch fails; Close must release
	// the fsnotify handle cleanly even though no goroutines started.
	w, err := NewWatcher(50*time.Millisecond, func(*Config) {})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close before Watch: %v", err)
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var mu sync.Mutex
	var got *Config
	w, err := NewWatcher(50*time.Millisecond, func(cfg *Config) {
		mu.Lock()
		got = cfg
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	cfg := Default()
	cfg.UI.Theme = "light"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := got != nil
		mu.Unlock()
		if done {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if got == nil {
		t.Fatal("onChange was not invoked after a config save")
	}
	if got.UI.Theme != "light" {
		t.Errorf("reloaded theme = %q, want light", got.UI.Theme)
	}
}
