package domain

// RoomID identifies a server-side broadcast group. A room is scoped either
// to a conversation id or to a user id (the implicit per-user room used for
// targeted delivery).
type RoomID string

func ConversationRoom(conversationID string) RoomID { return RoomID(conversationID) }

func UserRoom(userID string) RoomID { return RoomID(userID) }
