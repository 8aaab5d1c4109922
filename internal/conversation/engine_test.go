// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResponder struct {
	reply string
	err   error
	calls int
	last  string
}

func (f *fakeResponder) Chat(_ context.Context, message string) (string, error) {
	f.calls++
	f.last = message
	return f.reply, f.err
}

func TestNewEngineSeedsGreeting(t *testing.T) {
	e := NewEngine(&fakeResponder{})
	msgs := e.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, Greeting, msgs[0].Content)
}

func TestSendAppendsPairedTurns(t *testing.T) {
	r := &fakeResponder{reply: "Shipping takes 3-5 days."}
	e := NewEngine(r)

	reply, err := e.Send(context.Background(), "  how long is shipping?  ")
	require.NoError(t, err)
	assert.Equal(t, "Shipping takes 3-5 days.", reply.Content)
	assert.Equal(t, "how long is shipping?", r.last, "input is trimmed before dispatch")

	msgs := e.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, RoleAssistant, msgs[2].Role)
	assert.False(t, e.Awaiting())
}

func TestSendFailureAppendsFallback(t *testing.T) {
	r := &fakeResponder{err: errors.New("connection refused")}
	e := NewEngine(r)

	reply, err := e.Send(context.Background(), "hello")
	assert.Error(t, err)
	assert.Equal(t, Fallback, reply.Content)

	// The user turn stays in the transcript and the pairing holds.
	msgs := e.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "hello", msgs[1].Content)
	assert.Equal(t, Fallback, msgs[2].Content)
	assert.False(t, e.Awaiting())
}

func TestEmptyReplyYieldsFallback(t *testing.T) {
	e := NewEngine(&fakeResponder{reply: "   "})
	reply, err := e.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, Fallback, reply.Content)
}

func TestEmptyInputRejected(t *testing.T) {
	r := &fakeResponder{}
	e := NewEngine(r)

	_, err := e.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Equal(t, 0, r.calls)
	assert.Equal(t, 1, e.Len(), "rejected input leaves no trace in the transcript")
}

func TestSecondSendRejectedWhileAwaiting(t *testing.T) {
	e := NewEngine(&fakeResponder{reply: "ok"})

	_, err := e.Begin("first")
	require.NoError(t, err)
	assert.True(t, e.Awaiting())

	_, err = e.Begin("second")
	assert.ErrorIs(t, err, ErrSendInFlight)

	e.Complete("done", nil)
	assert.False(t, e.Awaiting())

	_, err = e.Begin("third")
	assert.NoError(t, err)
}

func TestIDsAreMonotonicAcrossClear(t *testing.T) {
	e := NewEngine(&fakeResponder{reply: "ok"})
	for i := 0; i < 3; i++ {
		_, err := e.Send(context.Background(), fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	msgs := e.Messages()
	for i := 1; i < len(msgs); i++ {
		assert.Greater(t, msgs[i].ID, msgs[i-1].ID)
	}
	lastID := msgs[len(msgs)-1].ID

	e.Clear()
	assert.Equal(t, 0, e.Len())

	sent, err := e.Send(context.Background(), "after clear")
	require.NoError(t, err)
	assert.Greater(t, sent.ID, lastID, "IDs keep climbing after a clear")
}

func TestClearDoesNotReseedGreeting(t *testing.T) {
	e := NewEngine(&fakeResponder{reply: "ok"})
	e.Clear()
	assert.Empty(t, e.Messages())
}

func TestPairingPropertyOverManySends(t *testing.T) {
	e := NewEngine(&fakeResponder{reply: "ok"})
	const n = 10
	for i := 0; i < n; i++ {
		_, err := e.Send(context.Background(), fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}

	msgs := e.Messages()
	require.Len(t, msgs, 1+2*n)
	for i := 1; i < len(msgs); i += 2 {
		assert.Equal(t, RoleUser, msgs[i].Role)
		assert.Equal(t, RoleAssistant, msgs[i+1].Role)
	}
}
