// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndRecent(t *testing.T) {
	l := openTestLog(t)

	l.Record("login", "agent@example.com")
	l.Record("logout", "")
	l.Record("forced_signout", "credential rejected by backend")

	events, err := l.Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	assert.Equal(t, "forced_signout", events[0].Event)
	assert.Equal(t, "login", events[2].Event)
	assert.Equal(t, "agent@example.com", events[2].Detail)
	assert.False(t, events[0].CreatedAt.IsZero())
}

func TestRecentLimit(t *testing.T) {
	l := openTestLog(t)
	for i := 0; i < 10; i++ {
		l.Record("bootstrap", "")
	}
	events, err := l.Recent(3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestRecentEmpty(t *testing.T) {
	l := openTestLog(t)
	events, err := l.Recent(5)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRecordAfterCloseIsSilent(t *testing.T) {
	l := openTestLog(t)
	require.NoError(t, l.Close())
	l.Record("login", "ignored")

	_, err := l.Recent(1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, l.Close(), "double close is safe")
}

func TestReopenPersistsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	l, err := Open(path)
	require.NoError(t, err)
	l.Record("login", "a@b.com")
	require.NoError(t, l.Close())

	l2, err := Open(path)
	require.NoError(t, err)
	defer l2.Close()

	events, err := l2.Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "login", events[0].Event)
}
