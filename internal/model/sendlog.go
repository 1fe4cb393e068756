package model

import (
	"strings"
	"time"
)

type MessageStatus string

const (
	StatusSent   MessageStatus = "sent"
	StatusFailed MessageStatus = "failed"
)

func (s MessageStatus) String() string {
	return string(s)
}

func (s MessageStatus) Valid() bool {
	return s == StatusSent || s == StatusFailed
}

type MessageType string

const (
	TypeInstant    MessageType = "instant"
	TypeScheduled  MessageType = "scheduled"
	TypeAttachment MessageType = "attachment"
)

func (t MessageType) String() string { return string(t) }

// ParseMessageType normalizes input; empty => instant.
// Returns (value, true) if valid; otherwise (instant, false).
func ParseMessageType(s string) (MessageType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "instant":
		return TypeInstant, true
	case "scheduled":
		return TypeScheduled, true
	case "attachment":
		return TypeAttachment, true
	default:
		return TypeInstant, false
	}
}

func (t MessageType) Valid() bool {
	return t == TypeInstant || t == TypeScheduled || t == TypeAttachment
}

// SendLogEntry is one line of the append-only send log (message_log.json).
type SendLogEntry struct {
	ID        string        `json:"id,omitempty" db:"id"`
	Timestamp time.Time     `json:"timestamp" db:"timestamp"`
	Phone     string        `json:"phone" db:"phone"`
	Message   string        `json:"message" db:"message"`
	Type      MessageType   `json:"type" db:"type"`
	Status    MessageStatus `json:"status" db:"status"`
	Error     string        `json:"error,omitempty" db:"error"`
}
