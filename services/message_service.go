package services

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chatline/domain"
	"chatline/errors"
	"chatline/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageService interface {
	Send(senderID, conversationID, content string) (domain.ResolvedMessage, error)
	History(conversationID string, cursor *string) ([]domain.Message, *string, error)
}

// MessageService orchestrates the persistence leg of a send. Live
// delivery is not triggered here: the sender re-emits the returned
// resolved message over its connection and the session fans it out.
type MessageService struct {
	messages      repositories.IMessageRepository
	conversations repositories.IConversationRepository
	users         repositories.IUserRepository
	log           *slog.Logger
}

func NewMessageService(
	messages repositories.IMessageRepository,
	conversations repositories.IConversationRepository,
	users repositories.IUserRepository,
	log *slog.Logger,
) *MessageService {
	return &MessageService{
		messages:      messages,
		conversations: conversations,
		users:         users,
		log:           log,
	}
}

// Send validates, persists and resolves one message. The latest-pointer
// update comes last and its failure is logged but not surfaced: the
// message is already stored and delivery must not report a false
// negative over a listing-only pointer.
func (s *MessageService) Send(senderID, conversationID, content string) (domain.ResolvedMessage, error) {
	if strings.TrimSpace(content) == "" {
		return domain.ResolvedMessage{}, fmt.Errorf("%w: empty message body", errors.ErrInvalidInput)
	}
	if conversationID == "" {
		return domain.ResolvedMessage{}, fmt.Errorf("%w: missing conversation id", errors.ErrInvalidInput)
	}

	message := domain.Message{
		ID:             uuid.NewString(),
		SenderID:       senderID,
		ConversationID: conversationID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.Store(message); err != nil {
		return domain.ResolvedMessage{}, err
	}

	sender, err := s.users.GetByID(senderID)
	if err != nil {
		return domain.ResolvedMessage{}, err
	}

	conversation, err := s.conversations.GetByID(conversationID)
	if err != nil {
		return domain.ResolvedMessage{}, err
	}

	participants := make([]domain.PublicUser, 0, len(conversation.Participants))
	for _, id := range conversation.Participants {
		user, err := s.users.GetByID(id)
		if err != nil {
			return domain.ResolvedMessage{}, err
		}
		participants = append(participants, user.Public())
	}

	if err := s.conversations.SetLatestMessage(conversationID, message.ID, message.CreatedAt); err != nil {
		s.log.Error("Latest message pointer not updated",
			"conversation_id", conversationID,
			"message_id", message.ID,
			"err", err,
		)
	}

	return domain.ResolvedMessage{
		ID:     message.ID,
		Sender: sender.Public(),
		Chat: domain.ConversationView{
			ID:            conversation.ID,
			Users:         participants,
			LatestMessage: lo.ToPtr(message),
			CreatedAt:     conversation.CreatedAt,
			UpdatedAt:     conversation.UpdatedAt,
		},
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}, nil
}

// History pages a conversation's messages oldest first.
func (s *MessageService) History(conversationID string, cursor *string) ([]domain.Message, *string, error) {
	if conversationID == "" {
		return nil, nil, fmt.Errorf("%w: missing conversation id", errors.ErrInvalidInput)
	}
	if _, err := s.conversations.GetByID(conversationID); err != nil {
		return nil, nil, err
	}
	return s.messages.List(conversationID, cursor)
}
