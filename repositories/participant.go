//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/domain"
	apperrors "github.com/Bernardo-Rodrigues/api-bate-papo-uol/errors"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/storage"
)

type IParticipantRepository interface {
	Join(name string) (domain.Participant, error)
	Get(name string) (domain.Participant, error)
	Heartbeat(name string) error
	List() ([]domain.Participant, error)
	Expire(name string) error
}

type ParticipantRepository struct {
	participants storage.Collection
	log          *slog.Logger
}

func NewParticipantRepository(store *storage.Store, log *slog.Logger) *ParticipantRepository {
	return &ParticipantRepository{participants: store.Collection("participants"), log: log}
}

type participantDoc struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

func toParticipant(doc participantDoc) domain.Participant {
	return domain.Participant{Name: doc.Name, LastStatus: doc.LastStatus}
}

// Join creates the participant with lastStatus = now. The name is the
// document key, so the uniqueness invariant is enforced by the store
// inside a single transaction.
func (r ParticipantRepository) Join(name string) (domain.Participant, error) {
	doc := participantDoc{Name: name, LastStatus: time.Now().UnixMilli()}
	if err := r.participants.InsertOne(name, doc); err != nil {
		if errors.Is(err, apperrors.ErrDocumentExists) {
			return domain.Participant{}, fmt.Errorf("%w: %s", apperrors.ErrParticipantExists, name)
		}
		return domain.Participant{}, err
	}
	r.log.Debug("participant joined", "name", name)
	return toParticipant(doc), nil
}

func (r ParticipantRepository) Get(name string) (domain.Participant, error) {
	var doc participantDoc
	if err := r.participants.FindOne(name, &doc); err != nil {
		if errors.Is(err, apperrors.ErrNoDocument) {
			return domain.Participant{}, fmt.Errorf("%w: %s", apperrors.ErrParticipantNotFound, name)
		}
		return domain.Participant{}, err
	}
	return toParticipant(doc), nil
}

// Heartbeat refreshes lastStatus. Repeated calls only rewrite the same
// document; they never create a second participant.
func (r ParticipantRepository) Heartbeat(name string) error {
	doc := participantDoc{Name: name, LastStatus: time.Now().UnixMilli()}
	if err := r.participants.UpdateOne(name, doc); err != nil {
		if errors.Is(err, apperrors.ErrNoDocument) {
			return fmt.Errorf("%w: %s", apperrors.ErrParticipantNotFound, name)
		}
		return err
	}
	return nil
}

func (r ParticipantRepository) List() ([]domain.Participant, error) {
	var participants []domain.Participant
	err := r.participants.Find(func(key string, raw []byte) error {
		var doc participantDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		participants = append(participants, toParticipant(doc))
		return nil
	})
	return participants, err
}

// Expire removes the participant record only. The paired departure
// message belongs to the caller, so one failed message append cannot
// block the removal of other stale participants.
func (r ParticipantRepository) Expire(name string) error {
	if err := r.participants.DeleteOne(name); err != nil {
		if errors.Is(err, apperrors.ErrNoDocument) {
			return fmt.Errorf("%w: %s", apperrors.ErrParticipantNotFound, name)
		}
		return err
	}
	r.log.Debug("participant expired", "name", name)
	return nil
}

var _ IParticipantRepository = ParticipantRepository{}
