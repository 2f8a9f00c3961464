// Package domain contains core concepts of the chat room.
// This file defines Message events, the message-type enum and the
// read-time visibility rule.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Broadcast is the reserved recipient meaning "all participants".
const Broadcast = "Todos"

// Status message texts emitted on join and on presence expiry.
const (
	JoinedRoomText = "entra na sala..."
	LeftRoomText   = "sai da sala..."
)

type MessageType string

const (
	TypeMessage MessageType = "message"
	TypePrivate MessageType = "private_message"
	TypeStatus  MessageType = "status"
)

// Valid reports whether t belongs to the message-type enum.
func (t MessageType) Valid() bool {
	switch t {
	case TypeMessage, TypePrivate, TypeStatus:
		return true
	}
	return false
}

// Message is a chat event: a user-authored message or a synthetic
// status notice written by the presence sweeper. From is immutable and
// is the sole authorization key for edit and delete.
type Message struct {
	ID   uuid.UUID
	From string
	To   string
	Text string
	Type MessageType
	Time string // wall clock HH:MM:SS at insert/update
}

// VisibleTo decides whether viewer may read the message. Broadcast-class
// messages (message, status) are visible to everyone; private messages
// only to sender and recipient. Pure predicate, applied before any
// recency truncation.
func (m Message) VisibleTo(viewer string) bool {
	if m.Type == TypeMessage || m.Type == TypeStatus {
		return true
	}
	return m.From == viewer || m.To == viewer
}

// Clock formats an instant the way messages carry it.
func Clock(at time.Time) string {
	return at.Format("15:04:05")
}
