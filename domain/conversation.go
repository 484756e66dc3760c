package domain

import (
	"sort"
	"time"
)

// Conversation binds a fixed pair of participants to their message log.
// The participant set is immutable after creation; the unordered pair
// (A, B) maps to at most one record.
type Conversation struct {
	ID              string
	Participants    []string
	LatestMessageID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PairKey returns the canonical identity of a direct conversation:
// both participant ids, sorted. Lookup is by set membership, not by
// ordered pair, so PairKey(a, b) == PairKey(b, a).
func PairKey(a, b string) [2]string {
	pair := [2]string{a, b}
	sort.Strings(pair[:])
	return pair
}

// HasParticipant reports whether userID belongs to the conversation.
func (c Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// ConversationView is the delivery-ready form of a conversation:
// participants resolved to their public profiles, latest message attached
// when present.
type ConversationView struct {
	ID            string       `json:"id"`
	Users         []PublicUser `json:"users"`
	LatestMessage *Message     `json:"latestMessage,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}
