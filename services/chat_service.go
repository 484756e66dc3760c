package services

import (
	"fmt"
	"log/slog"

	"chatline/domain"
	"chatline/errors"
	"chatline/repositories"

	"github.com/samber/lo"
)

type IChatService interface {
	AccessChat(selfID, otherID string) (view domain.ConversationView, created bool, err error)
	FetchChats(selfID string) ([]domain.ConversationView, error)
}

// ChatService resolves direct conversations between two users. A pair of
// users maps to exactly one conversation regardless of who opened it.
type ChatService struct {
	conversations repositories.IConversationRepository
	users         repositories.IUserRepository
	messages      repositories.IMessageRepository
	log           *slog.Logger
}

func NewChatService(
	conversations repositories.IConversationRepository,
	users repositories.IUserRepository,
	messages repositories.IMessageRepository,
	log *slog.Logger,
) *ChatService {
	return &ChatService{
		conversations: conversations,
		users:         users,
		messages:      messages,
		log:           log,
	}
}

// AccessChat returns the direct conversation between the requester and
// another user, creating it on first contact.
func (s *ChatService) AccessChat(selfID, otherID string) (domain.ConversationView, bool, error) {
	if otherID == "" || otherID == selfID {
		return domain.ConversationView{}, false, fmt.Errorf("%w: peer user id", errors.ErrInvalidInput)
	}
	if _, err := s.users.GetByID(otherID); err != nil {
		return domain.ConversationView{}, false, err
	}

	conversation, created, err := s.conversations.GetOrCreateDirect(selfID, otherID)
	if err != nil {
		return domain.ConversationView{}, false, err
	}
	if created {
		s.log.Info("Conversation created", "conversation_id", conversation.ID)
	}
	view, err := s.resolveView(conversation)
	return view, created, err
}

// FetchChats lists the requester's conversations, most recently active
// first, each with its participants and latest message resolved.
func (s *ChatService) FetchChats(selfID string) ([]domain.ConversationView, error) {
	conversations, err := s.conversations.ListForUser(selfID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.ConversationView, 0, len(conversations))
	for _, conversation := range conversations {
		view, err := s.resolveView(conversation)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ChatService) resolveView(conversation domain.Conversation) (domain.ConversationView, error) {
	participants := make([]domain.PublicUser, 0, len(conversation.Participants))
	for _, id := range conversation.Participants {
		user, err := s.users.GetByID(id)
		if err != nil {
			return domain.ConversationView{}, err
		}
		participants = append(participants, user.Public())
	}

	view := domain.ConversationView{
		ID:        conversation.ID,
		Users:     participants,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
	}

	if conversation.LatestMessageID != "" {
		latest, found, err := s.messages.Latest(conversation.ID)
		if err != nil {
			return domain.ConversationView{}, err
		}
		if found {
			view.LatestMessage = lo.ToPtr(latest)
		}
	}
	return view, nil
}
