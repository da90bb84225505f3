package domain

import "time"

// User represents an application user.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          *string   `json:"email,omitempty"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation represents a group of participants exchanging messages.
type Conversation struct {
	ID        int64     `json:"id"`
	Title     *string   `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationParticipant is the membership of a user in a conversation.
// Its existence is the sole visibility gate for the conversation and its
// messages.
type ConversationParticipant struct {
	ConversationID int64     `json:"conversation_id"`
	UserID         int64     `json:"user_id"`
	JoinedAt       time.Time `json:"joined_at"`
}

// Supported message types.
const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// ValidMessageType reports whether t is a recognized message type.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeSystem:
		return true
	}
	return false
}

// Message represents a single message posted into a conversation.
// SenderUsername is filled by the store's sender join; it is not a column on
// the messages table.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation"`
	SenderID       int64     `json:"sender"`
	SenderUsername string    `json:"sender_username"`
	Content        string    `json:"content"`
	MessageType    string    `json:"message_type"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
