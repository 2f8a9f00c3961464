// Package domain contains core concepts of the chat room.
// This file defines Participant entities and the staleness rule.
// No storage, network, or UI logic should be added here.
package domain

import "time"

// Participant is a connected user. Name is the primary key for presence
// purposes: at most one live Participant per Name at any time.
type Participant struct {
	Name       string
	LastStatus int64 // epoch milliseconds of the last heartbeat
}

// IdleSince returns how long the participant has gone without a heartbeat.
func (p Participant) IdleSince(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(p.LastStatus))
}

// Stale reports whether the participant exceeded the presence timeout
// and should be evicted by the sweeper.
func (p Participant) Stale(now time.Time, timeout time.Duration) bool {
	return p.IdleSince(now) > timeout
}
