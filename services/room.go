package services

import (
	"fmt"
	"log/slog"

	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/domain"
	apperrors "github.com/Bernardo-Rodrigues/api-bate-papo-uol/errors"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/moderation"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/repositories"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/sanitize"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IRoomService interface {
	Join(name string) error
	Heartbeat(name string) error
	Participants() ([]domain.Participant, error)
	PostMessage(from, to, text string, kind domain.MessageType) (domain.Message, error)
	Messages(viewer string, limit int) ([]domain.Message, error)
	EditMessage(id uuid.UUID, actingUser, to, text string, kind domain.MessageType) (domain.Message, error)
	DeleteMessage(id uuid.UUID, actingUser string) error
}

// RoomService pairs the participant registry with the message log:
// joins emit their status broadcast, posts require a live sender, and
// reads go through the visibility filter.
type RoomService struct {
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	moderator    *moderation.Moderator
	log          *slog.Logger
}

func NewRoomService(
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	moderator *moderation.Moderator,
	log *slog.Logger,
) *RoomService {
	return &RoomService{
		participants: participants,
		messages:     messages,
		moderator:    moderator,
		log:          log,
	}
}

// Join registers the participant and appends the "entra na sala..."
// status broadcast. The two writes are not transactional: when the
// append fails after a successful registration, the participant stays
// and the missing status message is only logged.
func (s *RoomService) Join(name string) error {
	name = sanitize.Clean(name)
	if name == "" {
		return fmt.Errorf("%w: empty name", apperrors.ErrInvalidName)
	}

	participant, err := s.participants.Join(name)
	if err != nil {
		return err
	}

	_, err = s.messages.Append(domain.Message{
		From: participant.Name,
		To:   domain.Broadcast,
		Text: domain.JoinedRoomText,
		Type: domain.TypeStatus,
	})
	if err != nil {
		s.log.Error("join status message dropped", "name", participant.Name, "err", err)
	}
	return nil
}

func (s *RoomService) Heartbeat(name string) error {
	return s.participants.Heartbeat(sanitize.Clean(name))
}

func (s *RoomService) Participants() ([]domain.Participant, error) {
	return s.participants.List()
}

// PostMessage appends a user-authored message. The sender must be a
// live participant; text is sanitized and censored before it is stored.
func (s *RoomService) PostMessage(from, to, text string, kind domain.MessageType) (domain.Message, error) {
	from = sanitize.Clean(from)
	if from == "" {
		return domain.Message{}, fmt.Errorf("%w: empty sender", apperrors.ErrInvalidName)
	}
	if _, err := s.participants.Get(from); err != nil {
		return domain.Message{}, err
	}

	return s.messages.Append(domain.Message{
		From: from,
		To:   sanitize.Clean(to),
		Text: s.moderator.Censor(sanitize.Clean(text)),
		Type: kind,
	})
}

// Messages returns what viewer may see, oldest first. The visibility
// filter runs over the whole log before the recency truncation, so
// limit takes the newest entries of the filtered set.
func (s *RoomService) Messages(viewer string, limit int) ([]domain.Message, error) {
	all, err := s.messages.All()
	if err != nil {
		return nil, err
	}

	visible := lo.Filter(all, func(m domain.Message, _ int) bool {
		return m.VisibleTo(viewer)
	})
	if limit > 0 && limit < len(visible) {
		visible = visible[len(visible)-limit:]
	}
	return visible, nil
}

// EditMessage replaces to/text/type of an own message. From is the sole
// authorization key and never changes.
func (s *RoomService) EditMessage(id uuid.UUID, actingUser, to, text string, kind domain.MessageType) (domain.Message, error) {
	message, err := s.messages.Get(id)
	if err != nil {
		return domain.Message{}, err
	}
	if message.From != actingUser {
		return domain.Message{}, fmt.Errorf("%w: %s", apperrors.ErrNotMessageAuthor, actingUser)
	}

	return s.messages.Update(id, sanitize.Clean(to), s.moderator.Censor(sanitize.Clean(text)), kind)
}

func (s *RoomService) DeleteMessage(id uuid.UUID, actingUser string) error {
	message, err := s.messages.Get(id)
	if err != nil {
		return err
	}
	if message.From != actingUser {
		return fmt.Errorf("%w: %s", apperrors.ErrNotMessageAuthor, actingUser)
	}
	return s.messages.Delete(id)
}

var _ IRoomService = (*RoomService)(nil)
