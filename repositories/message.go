//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"chatline/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	Store(message domain.Message) error
	List(conversationID string, cursor *string) ([]domain.Message, *string, error)
	Latest(conversationID string) (domain.Message, bool, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) *MessageRepository {
	return &MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

type diskMessage struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"sender_id"`
	ConversationID string    `json:"conversation_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists a message in BadgerDB.
// The key is formatted as "msg:{conversation_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using the message id as a collision
//     disconnector if two messages arrive at the same nanosecond.
func (m *MessageRepository) Store(message domain.Message) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.ConversationID,
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	data, err := json.Marshal(fromMessage(message))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// List retrieves a conversation's messages using a prefix scan, oldest
// first. Thanks to the padded timestamp in the key, messages come back
// naturally sorted by creation time. It stops once the configured
// limitMessages is reached and returns the cursor to resume from.
func (m *MessageRepository) List(conversationID string, cursor *string) ([]domain.Message, *string, error) {
	var raw [][]byte
	var lastKey string

	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", conversationID)
		prefix := []byte(prefixStr)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		seekKey := prefix
		if cursor != nil {
			seekKey = append([]byte(prefixStr), []byte(*cursor)...)
		}
		it.Seek(seekKey)

		// The cursor points at the last key already delivered.
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(raw) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefixStr):])
			err := item.Value(func(value []byte) error {
				raw = append(raw, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var messages []domain.Message
	for _, data := range raw {
		var record diskMessage
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, nil, err
		}
		messages = append(messages, toMessage(record))
	}
	return messages, lo.ToPtr(lastKey), nil
}

// Latest returns a conversation's most recent message with a reverse
// prefix scan. Seeking to prefix+0xff lands past the last padded key.
func (m *MessageRepository) Latest(conversationID string) (domain.Message, bool, error) {
	var data []byte

	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", conversationID))
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(append(append([]byte(nil), prefix...), 0xff))
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		return it.Item().Value(func(value []byte) error {
			data = append([]byte(nil), value...)
			return nil
		})
	})
	if err != nil {
		return domain.Message{}, false, err
	}
	if data == nil {
		return domain.Message{}, false, nil
	}

	var record diskMessage
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.Message{}, false, err
	}
	return toMessage(record), true, nil
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:             message.ID,
		SenderID:       message.SenderID,
		ConversationID: message.ConversationID,
		Content:        message.Content,
		CreatedAt:      message.CreatedAt.UTC(),
	}
}

func toMessage(record diskMessage) domain.Message {
	return domain.Message{
		ID:             record.ID,
		SenderID:       record.SenderID,
		ConversationID: record.ConversationID,
		Content:        record.Content,
		CreatedAt:      record.CreatedAt,
	}
}
