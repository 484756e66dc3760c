package repositories

import (
	"log/slog"
	"testing"
	"time"

	"chatline/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Store_Multiple_Messages_Ascending(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewMessageRepository(db, slog.Default(), nil)
	conversationID := uuid.NewString()
	at := time.Now().UTC()
	messages := []domain.Message{
		{ID: uuid.NewString(), SenderID: "alice", ConversationID: conversationID, Content: "first", CreatedAt: at},
		{ID: uuid.NewString(), SenderID: "bob", ConversationID: conversationID, Content: "second", CreatedAt: at.Add(1 * time.Minute)},
		{ID: uuid.NewString(), SenderID: "alice", ConversationID: conversationID, Content: "third", CreatedAt: at.Add(2 * time.Minute)},
	}
	for _, msg := range messages {
		req.NoError(repository.Store(msg))
	}

	fetched, _, err := repository.List(conversationID, nil)
	req.NoError(err)
	req.Len(fetched, len(messages))
	req.Equal(messages, fetched)
}

func Test_List_Does_Not_Leak_Across_Conversations(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewMessageRepository(db, slog.Default(), nil)
	convA := uuid.NewString()
	convB := uuid.NewString()
	at := time.Now().UTC()

	req.NoError(repository.Store(domain.Message{ID: uuid.NewString(), SenderID: "alice", ConversationID: convA, Content: "for A", CreatedAt: at}))
	req.NoError(repository.Store(domain.Message{ID: uuid.NewString(), SenderID: "carol", ConversationID: convB, Content: "for B", CreatedAt: at}))

	fetched, _, err := repository.List(convA, nil)
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("for A", fetched[0].Content)
}

func Test_List_With_Limit_And_Cursor(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	limit := 2
	repository := NewMessageRepository(db, slog.Default(), &limit)
	conversationID := uuid.NewString()
	at := time.Now().UTC()

	contents := []string{"one", "two", "three"}
	for i, content := range contents {
		req.NoError(repository.Store(domain.Message{
			ID:             uuid.NewString(),
			SenderID:       "alice",
			ConversationID: conversationID,
			Content:        content,
			CreatedAt:      at.Add(time.Duration(i) * time.Minute),
		}))
	}

	page1, cursor, err := repository.List(conversationID, nil)
	req.NoError(err)
	req.Len(page1, 2)
	req.Equal("one", page1[0].Content)
	req.Equal("two", page1[1].Content)
	req.NotNil(cursor)

	page2, _, err := repository.List(conversationID, cursor)
	req.NoError(err)
	req.Len(page2, 1)
	req.Equal("three", page2[0].Content)
}

func Test_Latest_Returns_Most_Recent_Message(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewMessageRepository(db, slog.Default(), nil)
	conversationID := uuid.NewString()
	other := uuid.NewString()
	at := time.Now().UTC()

	req.NoError(repository.Store(domain.Message{
		ID: uuid.NewString(), SenderID: "alice", ConversationID: conversationID,
		Content: "old", CreatedAt: at,
	}))
	req.NoError(repository.Store(domain.Message{
		ID: uuid.NewString(), SenderID: "bob", ConversationID: conversationID,
		Content: "newest", CreatedAt: at.Add(1 * time.Minute),
	}))
	req.NoError(repository.Store(domain.Message{
		ID: uuid.NewString(), SenderID: "carol", ConversationID: other,
		Content: "elsewhere", CreatedAt: at.Add(2 * time.Minute),
	}))

	latest, found, err := repository.Latest(conversationID)
	req.NoError(err)
	req.True(found)
	req.Equal("newest", latest.Content)

	_, found, err = repository.Latest(uuid.NewString())
	req.NoError(err)
	req.False(found)
}
