//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"chatline/domain"
	"chatline/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IConversationRepository interface {
	GetOrCreateDirect(a, b string) (conv domain.Conversation, created bool, err error)
	GetByID(id string) (domain.Conversation, error)
	ListForUser(userID string) ([]domain.Conversation, error)
	SetLatestMessage(conversationID, messageID string, at time.Time) error
}

// ConversationRepository stores conversation records in BadgerDB.
// Two key families: the record itself under its id, and a pair index that
// makes the unordered participant pair resolve to a single record.
type ConversationRepository struct {
	db *badger.DB
}

func NewConversationRepository(db *badger.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

type diskConversation struct {
	ID              string    `json:"id"`
	Participants    []string  `json:"participants"`
	LatestMessageID string    `json:"latest_message_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func convKey(id string) []byte { return []byte("convo:id:" + id) }

func pairIndexKey(a, b string) []byte {
	pair := domain.PairKey(a, b)
	return []byte(fmt.Sprintf("convo:pair:%s:%s", pair[0], pair[1]))
}

// GetOrCreateDirect resolves the direct conversation for an unordered
// participant pair, creating it when absent. The whole check-then-create
// runs inside one badger transaction, so two racing calls cannot create
// two records for the same pair.
func (c *ConversationRepository) GetOrCreateDirect(a, b string) (domain.Conversation, bool, error) {
	var record diskConversation
	var created bool

	err := c.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(pairIndexKey(a, b))
		if err == nil {
			var id string
			if err := item.Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}
			return readConversation(txn, id, &record)
		}

		now := time.Now().UTC()
		participants := domain.PairKey(a, b)
		record = diskConversation{
			ID:           uuid.NewString(),
			Participants: participants[:],
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if err := txn.Set(pairIndexKey(a, b), []byte(record.ID)); err != nil {
			return err
		}
		if err := txn.Set(convKey(record.ID), data); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return domain.Conversation{}, false, err
	}
	return toConversation(record), created, nil
}

func (c *ConversationRepository) GetByID(id string) (domain.Conversation, error) {
	var record diskConversation
	err := c.db.View(func(txn *badger.Txn) error {
		return readConversation(txn, id, &record)
	})
	if err != nil {
		return domain.Conversation{}, err
	}
	return toConversation(record), nil
}

// ListForUser returns the user's conversations, most recently updated
// first. A prefix scan is enough here: the record space is the user base's
// conversation list, and sorting happens in memory.
func (c *ConversationRepository) ListForUser(userID string) ([]domain.Conversation, error) {
	var records []diskConversation
	err := c.db.View(func(txn *badger.Txn) error {
		prefix := []byte("convo:id:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record diskConversation
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				if lo.Contains(record.Participants, userID) {
					records = append(records, record)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})

	return lo.Map(records, func(record diskConversation, _ int) domain.Conversation {
		return toConversation(record)
	}), nil
}

// SetLatestMessage moves the conversation's latest-message pointer and
// bumps its updated timestamp. Called after the message itself persisted;
// a failure here is the acknowledged consistency gap, handled by the
// caller.
func (c *ConversationRepository) SetLatestMessage(conversationID, messageID string, at time.Time) error {
	return c.db.Update(func(txn *badger.Txn) error {
		var record diskConversation
		if err := readConversation(txn, conversationID, &record); err != nil {
			return err
		}
		record.LatestMessageID = messageID
		record.UpdatedAt = at
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return txn.Set(convKey(conversationID), data)
	})
}

func readConversation(txn *badger.Txn, id string, out *diskConversation) error {
	item, err := txn.Get(convKey(id))
	if err != nil {
		return errors.ErrConversationNotFound
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func toConversation(record diskConversation) domain.Conversation {
	return domain.Conversation{
		ID:              record.ID,
		Participants:    record.Participants,
		LatestMessageID: record.LatestMessageID,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}
