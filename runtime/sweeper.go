// Package runtime holds the background workers of the chat room.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/domain"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/repositories"
)

// Sweeper evicts stale participants on a fixed interval and appends
// their departure notice to the message log. It keeps no state between
// ticks; every tick recomputes staleness from the stored lastStatus
// values, so a crash between ticks costs timeliness, not correctness.
type Sweeper struct {
	log          *slog.Logger
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	interval     time.Duration
	timeout      time.Duration
}

func NewSweeper(
	log *slog.Logger,
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	interval time.Duration,
	timeout time.Duration,
) *Sweeper {
	return &Sweeper{
		log:          log,
		participants: participants,
		messages:     messages,
		interval:     interval,
		timeout:      timeout,
	}
}

// Run executes the sweep loop until ctx is cancelled. One goroutine
// owns the loop, so ticks are serialized: a tick that outlasts the
// interval makes the ticker drop fires instead of running two sweeps
// concurrently. A failed tick is logged and the next one fires on
// schedule.
func (s *Sweeper) Run(ctx context.Context) error {
	s.log.Info("Starting presence sweeper", "interval", s.interval, "timeout", s.timeout)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.sweep(); err != nil {
				s.log.Error("Sweep tick failed", "err", err)
			}
		}
	}
}

// sweep removes every stale participant and appends its "sai da
// sala..." broadcast. Each participant is handled independently: a
// failed expire or append is logged and the batch moves on.
func (s *Sweeper) sweep() error {
	now := time.Now()
	participants, err := s.participants.List()
	if err != nil {
		return fmt.Errorf("load participants: %w", err)
	}

	for _, participant := range participants {
		if !participant.Stale(now, s.timeout) {
			continue
		}
		if err := s.participants.Expire(participant.Name); err != nil {
			s.log.Error("Failed to expire participant", "name", participant.Name, "err", err)
			continue
		}
		s.log.Info("Participant timed out", "name", participant.Name, "idle", participant.IdleSince(now))

		_, err := s.messages.Append(domain.Message{
			From: participant.Name,
			To:   domain.Broadcast,
			Text: domain.LeftRoomText,
			Type: domain.TypeStatus,
		})
		if err != nil {
			// The record is already gone; losing the notice must not
			// block the remaining participants of this tick.
			s.log.Error("Departure message dropped", "name", participant.Name, "err", err)
		}
	}
	return nil
}
