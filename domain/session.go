// Package domain defines the core domain models for parley.
package domain

import (
	"encoding/json"
	"time"
)

// SessionStatus represents the lifecycle status of a session.
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "PENDING"
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusPaused    SessionStatus = "PAUSED"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusError     SessionStatus = "ERROR"
)

// validTransitions defines the allowed lifecycle edges.
var validTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusPending:   {SessionStatusActive, SessionStatusError},
	SessionStatusActive:    {SessionStatusPaused, SessionStatusCompleted, SessionStatusError},
	SessionStatusPaused:    {SessionStatusActive, SessionStatusCompleted, SessionStatusError},
	SessionStatusCompleted: {},
	SessionStatusError:     {},
}

// CanTransitionTo reports whether the edge s -> to is in the lifecycle table.
func (s SessionStatus) CanTransitionTo(to SessionStatus) bool {
	for _, next := range validTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
func (s SessionStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Session represents one end-to-end conversation session.
type Session struct {
	SessionID   string        `json:"session_id"`
	Name        string        `json:"name"`
	Preset      string        `json:"preset"`
	Status      SessionStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// Message represents a single message in a session. Messages are immutable
// once persisted.
type Message struct {
	MessageID string          `json:"message_id"`
	SessionID string          `json:"session_id"`
	Role      string          `json:"role"` // user, assistant, system
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}
