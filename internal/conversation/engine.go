// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation holds the message transcript and send lifecycle
// shared by the TUI chat surface and the line-mode REPL.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// CONSTANTS AND ERRORS
// =============================================================================

// Greeting seeds a fresh conversation so the operator is never met with
// an empty transcript.
const Greeting = "Hello! I am Support AutoPilot. Ask me about shipping, tours, or anything else!"

// Fallback is appended as the assistant turn whenever a send fails for
// any reason. The failure detail goes to the log, not the transcript.
const Fallback = "Sorry, I am having trouble connecting to the server."

var (
	// ErrEmptyMessage is returned when the trimmed input is empty.
	ErrEmptyMessage = errors.New("conversation: message is empty")
	// ErrSendInFlight is returned when a send is attempted while a
	// previous one is still awaiting its reply.
	ErrSendInFlight = errors.New("conversation: a send is already in flight")
)

// Responder is the slice of the API client the engine needs.
type Responder interface {
	Chat(ctx context.Context, message string) (string, error)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine owns an append-only transcript and enforces the one-in-flight
// send discipline. A user turn is always answered by exactly one
// assistant turn, real or fallback.
type Engine struct {
	mu       sync.Mutex
	messages []Message
	nextID   int64
	awaiting bool

	responder Responder
}

// NewEngine creates an engine seeded with the greeting.
func NewEngine(responder Responder) *Engine {
	e := &Engine{responder: responder, nextID: 1}
	e.appendLocked(RoleAssistant, Greeting)
	return e
}

// Messages returns a snapshot of the transcript in creation order.
func (e *Engine) Messages() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// Awaiting reports whether a send is in flight.
func (e *Engine) Awaiting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.awaiting
}

// Len returns the number of turns in the transcript.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.messages)
}

// Clear empties the transcript. The greeting is not reseeded; the next
// visible turn is whatever the operator sends.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = nil
}

// appendLocked assigns the next ID and appends. Caller holds e.mu.
func (e *Engine) appendLocked(role Role, content string) Message {
	msg := Message{
		ID:        e.nextID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	e.nextID++
	e.messages = append(e.messages, msg)
	return msg
}

// =============================================================================
// SEND LIFECYCLE
// =============================================================================

// Begin validates the input, appends the user turn, and marks the engine
// awaiting. The caller must follow with exactly one Complete call. The
// TUI uses the Begin/Complete split so the send runs off the UI
// goroutine; line-mode callers can use Send instead.
func (e *Engine) Begin(input string) (Message, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Message{}, ErrEmptyMessage
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.awaiting {
		return Message{}, ErrSendInFlight
	}
	e.awaiting = true
	return e.appendLocked(RoleUser, trimmed), nil
}

// Complete appends the assistant turn for the in-flight send and clears
// the awaiting flag. A failed send yields the fallback turn so the
// pairing invariant holds.
func (e *Engine) Complete(reply string, err error) Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.awaiting = false
	if err != nil || strings.TrimSpace(reply) == "" {
		return e.appendLocked(RoleAssistant, Fallback)
	}
	return e.appendLocked(RoleAssistant, reply)
}

// Send runs the full lifecycle synchronously: append the user turn, call
// the backend, append the reply or fallback. It returns the assistant
// turn and the underlying send error, already absorbed into the
// transcript, for callers that want to log it.
func (e *Engine) Send(ctx context.Context, input string) (Message, error) {
	if _, err := e.Begin(input); err != nil {
		return Message{}, err
	}
	reply, err := e.responder.Chat(ctx, strings.TrimSpace(input))
	return e.Complete(reply, err), err
}

// Dispatch calls the backend for a turn already opened with Begin. It is
// the goroutine body the TUI runs between Begin and Complete.
func (e *Engine) Dispatch(ctx context.Context, input string) (string, error) {
	return e.responder.Chat(ctx, strings.TrimSpace(input))
}
