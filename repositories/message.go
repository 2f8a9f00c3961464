//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/domain"
	apperrors "github.com/Bernardo-Rodrigues/api-bate-papo-uol/errors"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/storage"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Append(message domain.Message) (domain.Message, error)
	Get(id uuid.UUID) (domain.Message, error)
	All() ([]domain.Message, error)
	Update(id uuid.UUID, to, text string, kind domain.MessageType) (domain.Message, error)
	Delete(id uuid.UUID) error
}

type MessageRepository struct {
	messages storage.Collection
	log      *slog.Logger
}

func NewMessageRepository(store *storage.Store, log *slog.Logger) *MessageRepository {
	return &MessageRepository{messages: store.Collection("messages"), log: log}
}

type messageDoc struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

func fromMessage(message domain.Message) messageDoc {
	return messageDoc{
		ID:   message.ID.String(),
		From: message.From,
		To:   message.To,
		Text: message.Text,
		Type: string(message.Type),
		Time: message.Time,
	}
}

func toMessage(doc messageDoc) (domain.Message, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:   id,
		From: doc.From,
		To:   doc.To,
		Text: doc.Text,
		Type: domain.MessageType(doc.Type),
		Time: doc.Time,
	}, nil
}

func validateMessage(to, text string, kind domain.MessageType) error {
	switch {
	case strings.TrimSpace(to) == "":
		return fmt.Errorf("%w: empty recipient", apperrors.ErrInvalidMessage)
	case strings.TrimSpace(text) == "":
		return fmt.Errorf("%w: empty text", apperrors.ErrInvalidMessage)
	case !kind.Valid():
		return fmt.Errorf("%w: unknown type %q", apperrors.ErrInvalidMessage, kind)
	}
	return nil
}

// Append persists a message at the tail of the log.
// The key is formatted as "{timestamp_padded}:{uuid}" to:
//  1. Ensure insertion ordering using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
//
// ID and Time are stamped here; the stored message is returned.
func (m MessageRepository) Append(message domain.Message) (domain.Message, error) {
	if err := validateMessage(message.To, message.Text, message.Type); err != nil {
		return domain.Message{}, err
	}
	at := time.Now()
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	message.Time = domain.Clock(at)

	key := fmt.Sprintf("%019d:%s", at.UnixNano(), message.ID)
	if err := m.messages.InsertOne(key, fromMessage(message)); err != nil {
		return domain.Message{}, err
	}
	m.log.Debug("message appended", "id", message.ID, "type", message.Type)
	return message, nil
}

func (m MessageRepository) Get(id uuid.UUID) (domain.Message, error) {
	_, doc, err := m.lookup(id)
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(doc)
}

// All returns every message in insertion order, oldest first. Thanks to
// the padded timestamp in the key, the prefix scan is already sorted.
func (m MessageRepository) All() ([]domain.Message, error) {
	var all []domain.Message
	err := m.messages.Find(func(key string, raw []byte) error {
		var doc messageDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		message, err := toMessage(doc)
		if err != nil {
			return err
		}
		all = append(all, message)
		return nil
	})
	return all, err
}

// Update is a full replace of to/text/type. Time is regenerated; the key
// is untouched so the message keeps its position in the log. From never
// changes.
func (m MessageRepository) Update(id uuid.UUID, to, text string, kind domain.MessageType) (domain.Message, error) {
	if err := validateMessage(to, text, kind); err != nil {
		return domain.Message{}, err
	}
	key, doc, err := m.lookup(id)
	if err != nil {
		return domain.Message{}, err
	}
	doc.To = to
	doc.Text = text
	doc.Type = string(kind)
	doc.Time = domain.Clock(time.Now())

	if err := m.messages.UpdateOne(key, doc); err != nil {
		return domain.Message{}, err
	}
	return toMessage(doc)
}

func (m MessageRepository) Delete(id uuid.UUID) error {
	key, _, err := m.lookup(id)
	if err != nil {
		return err
	}
	return m.messages.DeleteOne(key)
}

// lookup resolves a message id to its log key. Keys embed the insertion
// timestamp, so id lookups scan the log and match on the uuid suffix.
func (m MessageRepository) lookup(id uuid.UUID) (string, messageDoc, error) {
	suffix := ":" + id.String()
	var foundKey string
	var found messageDoc
	err := m.messages.Find(func(key string, raw []byte) error {
		if !strings.HasSuffix(key, suffix) {
			return nil
		}
		if err := json.Unmarshal(raw, &found); err != nil {
			return err
		}
		foundKey = key
		return nil
	})
	if err != nil {
		return "", messageDoc{}, err
	}
	if foundKey == "" {
		return "", messageDoc{}, fmt.Errorf("%w: %s", apperrors.ErrMessageNotFound, id)
	}
	return foundKey, found, nil
}

var _ IMessageRepository = MessageRepository{}
