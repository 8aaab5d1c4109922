// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a turn authored by the operator.
	RoleUser Role = "user"
	// RoleAssistant marks a turn authored by the backend assistant.
	RoleAssistant Role = "assistant"
)

// Message is one immutable conversation turn. IDs are assigned from a
// per-conversation monotonic counter, so sorting by ID reproduces
// creation order.
type Message struct {
	ID        int64
	Role      Role
	Content   string
	Timestamp time.Time
}
