//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chatline/domain"
	"chatline/errors"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const searchLimit = 50

type IUserRepository interface {
	CreateUser(name, email, passwordHash string) (domain.User, error)
	GetByEmail(email string) (domain.User, error)
	GetByID(id string) (domain.User, error)
	Search(ctx context.Context, selfID, keyword string) ([]domain.User, error)
}

// UserRepository persists accounts in BadgerDB and mirrors name/email into
// a Bluge index so the directory search doesn't scan the whole key space.
type UserRepository struct {
	db    *badger.DB
	index *bluge.Writer
	log   *slog.Logger
}

func NewUserRepository(db *badger.DB, index *bluge.Writer, log *slog.Logger) *UserRepository {
	return &UserRepository{db: db, index: index, log: log}
}

// diskUser is the stored representation, kept separate from the domain
// struct so storage layout can evolve independently.
type diskUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func userKey(id string) []byte    { return []byte("user:id:" + id) }
func emailKey(email string) []byte { return []byte("user:email:" + email) }

// CreateUser persists a new account. The email key acts as a uniqueness
// guard inside the write transaction.
func (u *UserRepository) CreateUser(name, email, passwordHash string) (domain.User, error) {
	record := diskUser{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey(email), []byte(record.ID)); err != nil {
			return err
		}
		return txn.Set(userKey(record.ID), data)
	})
	if err != nil {
		return domain.User{}, err
	}

	if err := u.indexUser(record); err != nil {
		// The account exists either way; search just won't find it until
		// the next reindex.
		u.log.Error("Failed to index user for search", "user_id", record.ID, "error", err)
	}

	return toUser(record), nil
}

func (u *UserRepository) indexUser(record diskUser) error {
	doc := bluge.NewDocument(record.ID).
		AddField(bluge.NewTextField("name", record.Name).StoreValue()).
		AddField(bluge.NewTextField("email", record.Email).StoreValue())
	return u.index.Update(doc.ID(), doc)
}

func (u *UserRepository) GetByEmail(email string) (domain.User, error) {
	var id string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return errors.ErrUserNotFound
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return domain.User{}, err
	}
	return u.GetByID(id)
}

func (u *UserRepository) GetByID(id string) (domain.User, error) {
	var record diskUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return errors.ErrUserNotFound
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return domain.User{}, err
	}
	return toUser(record), nil
}

// Search returns directory matches on name or email, excluding the
// requester. An empty keyword lists everyone else (the original behavior
// of the directory endpoint).
func (u *UserRepository) Search(ctx context.Context, selfID, keyword string) ([]domain.User, error) {
	if strings.TrimSpace(keyword) == "" {
		return u.listAll(selfID)
	}

	reader, err := u.index.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	kw := strings.ToLower(strings.TrimSpace(keyword))
	query := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(kw).SetField("name")).
		AddShould(bluge.NewMatchQuery(kw).SetField("email")).
		AddShould(bluge.NewWildcardQuery("*" + kw + "*").SetField("name")).
		AddShould(bluge.NewWildcardQuery("*" + kw + "*").SetField("email"))

	iter, err := reader.Search(ctx, bluge.NewTopNSearch(searchLimit, query))
	if err != nil {
		return nil, err
	}

	var ids []string
	match, err := iter.Next()
	for err == nil && match != nil {
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, string(value))
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		match, err = iter.Next()
	}
	if err != nil {
		return nil, err
	}

	var users []domain.User
	for _, id := range ids {
		if id == selfID {
			continue
		}
		user, err := u.GetByID(id)
		if err != nil {
			// Index can lag behind deletions; skip dangling hits.
			u.log.Debug("Search hit without stored record", "user_id", id)
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

func (u *UserRepository) listAll(selfID string) ([]domain.User, error) {
	var users []domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte("user:id:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record diskUser
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				if record.ID != selfID {
					users = append(users, toUser(record))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return users, err
}

func toUser(record diskUser) domain.User {
	return domain.User{
		ID:           record.ID,
		Name:         record.Name,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		CreatedAt:    record.CreatedAt,
	}
}
