package domain

import "time"

// Message is an immutable chat record. Every message belongs to exactly
// one conversation.
type Message struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"senderId"`
	ConversationID string    `json:"chatId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ResolvedMessage is the display-ready form handed to clients: the sender
// resolved to public profile fields and the full conversation attached so
// receivers can filter on participants.
type ResolvedMessage struct {
	ID        string           `json:"id"`
	Sender    PublicUser       `json:"sender"`
	Chat      ConversationView `json:"chat"`
	Content   string           `json:"content"`
	CreatedAt time.Time        `json:"createdAt"`
}
