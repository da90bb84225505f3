package domain

import (
	"context"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, int, error)
}

// ConversationRepository defines persistence operations for conversations.
// Create inserts the conversation and the creator's participation row in one
// transaction: a conversation is never observable with zero participants.
type ConversationRepository interface {
	Create(ctx context.Context, c *Conversation, creatorID int64) error
	GetByID(ctx context.Context, id int64) (*Conversation, error)
	List(ctx context.Context, viewerID int64, q ConversationQuery, offset, limit int) ([]*Conversation, int, error)
	Update(ctx context.Context, c *Conversation) error
}

// MessageRepository defines persistence operations for messages. List is
// restricted to conversations the viewer participates in before q's filters
// are applied, and returns the total match count alongside the page.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id int64) (*Message, error)
	List(ctx context.Context, viewerID int64, q MessageQuery, offset, limit int) ([]*Message, int, error)
	Update(ctx context.Context, m *Message) error
	Delete(ctx context.Context, id int64) error
}

// ParticipantRepository defines operations around conversation participants.
type ParticipantRepository interface {
	Add(ctx context.Context, conversationID, userID int64) error
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
	ListParticipants(ctx context.Context, conversationID int64) ([]*User, error)
}
