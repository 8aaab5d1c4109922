// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides durable storage for the backend bearer credential.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/supportautopilot/autopilot-tui/internal/config"
	"github.com/supportautopilot/autopilot-tui/internal/util"
)

// tokenFileName is the single well-known key under which the credential
// is persisted. Nothing else is persisted by this package.
const tokenFileName = "token"

// ErrNoToken indicates no credential is stored.
var ErrNoToken = errors.New("no credential stored")

// Store is the process-wide holder of the bearer credential.
//
// At most one credential is stored at a time; Set atomically replaces the
// previous one on disk, so a reader never observes a partial token. All
// access goes through the Store; callers must not retain the token beyond
// the lifetime of a single request.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by ~/.autopilot/token.
func NewStore() (*Store, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStoreWithPath(filepath.Join(dir, tokenFileName)), nil
}

// NewStoreWithPath creates a store backed by a specific file path.
func NewStoreWithPath(path string) *Store {
	return &Store{path: path}
}

// Get returns the stored credential. Returns ErrNoToken when nothing is
// stored.
func (s *Store) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read credential: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Set atomically replaces the stored credential. The file is owner-only;
// the token proves an authenticated session and must not leak.
func (s *Store) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("refusing to store an empty credential")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return util.AtomicWriteFile(s.path, []byte(token+"\n"), 0600)
}

// Clear removes the stored credential. Clearing an already-empty store is
// not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}

// Present reports whether a credential is currently stored.
func (s *Store) Present() bool {
	_, err := s.Get()
	return err == nil
}
