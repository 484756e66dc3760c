package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"chatline/domain"
	"chatline/errors"
	"chatline/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// In-memory repository doubles. Behavior mirrors the badger-backed
// implementations closely enough for service-level assertions.

type fakeUserRepo struct {
	users map[string]domain.User // by id
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) CreateUser(name, email, passwordHash string) (domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return domain.User{}, errors.ErrUserAlreadyExists
		}
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, errors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(id string) (domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, errors.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Search(_ context.Context, selfID, keyword string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.ID == selfID {
			continue
		}
		if keyword == "" || containsFold(u.Name, keyword) || containsFold(u.Email, keyword) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

type fakeConvRepo struct {
	conversations map[string]domain.Conversation
	latestErr     error // injected SetLatestMessage failure
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{conversations: make(map[string]domain.Conversation)}
}

func (r *fakeConvRepo) GetOrCreateDirect(a, b string) (domain.Conversation, bool, error) {
	pair := domain.PairKey(a, b)
	for _, c := range r.conversations {
		existing := domain.PairKey(c.Participants[0], c.Participants[1])
		if existing == pair {
			return c, false, nil
		}
	}
	now := time.Now().UTC()
	conv := domain.Conversation{
		ID:           uuid.NewString(),
		Participants: []string{pair[0], pair[1]},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.conversations[conv.ID] = conv
	return conv, true, nil
}

func (r *fakeConvRepo) GetByID(id string) (domain.Conversation, error) {
	c, ok := r.conversations[id]
	if !ok {
		return domain.Conversation{}, errors.ErrConversationNotFound
	}
	return c, nil
}

func (r *fakeConvRepo) ListForUser(userID string) ([]domain.Conversation, error) {
	var out []domain.Conversation
	for _, c := range r.conversations {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeConvRepo) SetLatestMessage(conversationID, messageID string, at time.Time) error {
	if r.latestErr != nil {
		return r.latestErr
	}
	c, ok := r.conversations[conversationID]
	if !ok {
		return errors.ErrConversationNotFound
	}
	c.LatestMessageID = messageID
	c.UpdatedAt = at
	r.conversations[conversationID] = c
	return nil
}

type fakeMsgRepo struct {
	messages []domain.Message
}

func (r *fakeMsgRepo) Store(message domain.Message) error {
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMsgRepo) List(conversationID string, cursor *string) ([]domain.Message, *string, error) {
	out := lo.Filter(r.messages, func(m domain.Message, _ int) bool {
		return m.ConversationID == conversationID
	})
	return out, nil, nil
}

func (r *fakeMsgRepo) Latest(conversationID string) (domain.Message, bool, error) {
	var latest domain.Message
	var found bool
	for _, m := range r.messages {
		if m.ConversationID != conversationID {
			continue
		}
		if !found || m.CreatedAt.After(latest.CreatedAt) {
			latest = m
			found = true
		}
	}
	return latest, found, nil
}

var (
	_ repositories.IUserRepository         = (*fakeUserRepo)(nil)
	_ repositories.IConversationRepository = (*fakeConvRepo)(nil)
	_ repositories.IMessageRepository      = (*fakeMsgRepo)(nil)
)
