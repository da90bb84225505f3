package service

import (
	"context"
	"strings"
	"time"

	"chatapi/internal/authz"
	"chatapi/internal/domain"
)

const maxContentLength = 5000

type MessageService struct {
	messages      domain.MessageRepository
	conversations domain.ConversationRepository
	authz         *authz.Authorizer
}

func NewMessageService(
	messages domain.MessageRepository,
	conversations domain.ConversationRepository,
	authorizer *authz.Authorizer,
) *MessageService {
	return &MessageService{
		messages:      messages,
		conversations: conversations,
		authz:         authorizer,
	}
}

type MessageCreateInput struct {
	ConversationID int64
	Content        string
	MessageType    string
}

type MessageUpdateInput struct {
	Content     *string
	MessageType *string
}

// Create posts a message into a conversation the sender participates in. The
// sender is always the acting user; a conversation the user cannot see is
// reported as not found.
func (s *MessageService) Create(ctx context.Context, in MessageCreateInput, sender *domain.User) (*domain.Message, error) {
	if in.ConversationID == 0 {
		return nil, domain.NewValidationError("conversation", "this field is required")
	}

	// Visibility is settled before the payload is inspected, same as Update:
	// a conversation the sender cannot see is not found no matter what the
	// body contains.
	conv, err := s.conversations.GetByID(ctx, in.ConversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, domain.ErrNotFound
	}
	ok, err := s.authz.CanViewConversation(ctx, sender, conv)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.Content) == "" {
		verr.Add("content", "this field may not be blank")
	} else if len([]rune(in.Content)) > maxContentLength {
		verr.Add("content", "message content exceeds 5000 characters")
	}
	if in.MessageType == "" {
		in.MessageType = domain.MessageTypeText
	}
	if !domain.ValidMessageType(in.MessageType) {
		verr.Add("message_type", "not a valid message type")
	}
	if !verr.Empty() {
		return nil, verr
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		ConversationID: in.ConversationID,
		SenderID:       sender.ID,
		SenderUsername: sender.Username,
		Content:        in.Content,
		MessageType:    in.MessageType,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Get returns a message the user may view, or not-found.
func (s *MessageService) Get(ctx context.Context, id int64, user *domain.User) (*domain.Message, error) {
	return s.visibleMessage(ctx, id, user)
}

// List returns one page of messages visible to user plus the total count.
func (s *MessageService) List(ctx context.Context, user *domain.User, q domain.MessageQuery, offset, limit int) ([]*domain.Message, int, error) {
	return s.messages.List(ctx, user.ID, q, offset, limit)
}

// Update applies a partial update to a message. Only the sender may update,
// and only while still a participant; a fellow participant gets forbidden, a
// non-participant gets not-found. Sender and creation timestamp are
// immutable.
func (s *MessageService) Update(ctx context.Context, id int64, in MessageUpdateInput, user *domain.User) (*domain.Message, error) {
	msg, err := s.mutableMessage(ctx, id, user)
	if err != nil {
		return nil, err
	}

	verr := &domain.ValidationError{}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			verr.Add("content", "this field may not be blank")
		} else if len([]rune(*in.Content)) > maxContentLength {
			verr.Add("content", "message content exceeds 5000 characters")
		}
	}
	if in.MessageType != nil && !domain.ValidMessageType(*in.MessageType) {
		verr.Add("message_type", "not a valid message type")
	}
	if !verr.Empty() {
		return nil, verr
	}

	if in.Content != nil {
		msg.Content = *in.Content
	}
	if in.MessageType != nil {
		msg.MessageType = *in.MessageType
	}
	msg.UpdatedAt = time.Now().UTC()
	if err := s.messages.Update(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Delete removes a message immediately and irreversibly. Same gating as
// Update.
func (s *MessageService) Delete(ctx context.Context, id int64, user *domain.User) error {
	msg, err := s.mutableMessage(ctx, id, user)
	if err != nil {
		return err
	}
	return s.messages.Delete(ctx, msg.ID)
}

func (s *MessageService) visibleMessage(ctx context.Context, id int64, user *domain.User) (*domain.Message, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, domain.ErrNotFound
	}
	ok, err := s.authz.CanViewMessage(ctx, user, msg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return msg, nil
}

func (s *MessageService) mutableMessage(ctx context.Context, id int64, user *domain.User) (*domain.Message, error) {
	msg, err := s.visibleMessage(ctx, id, user)
	if err != nil {
		return nil, err
	}
	ok, err := s.authz.CanMutateMessage(ctx, user, msg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	return msg, nil
}
