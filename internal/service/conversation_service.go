package service

import (
	"context"
	"fmt"
	"time"

	"chatapi/internal/authz"
	"chatapi/internal/domain"
)

type ConversationService struct {
	conversations domain.ConversationRepository
	participants  domain.ParticipantRepository
	users         domain.UserRepository
	authz         *authz.Authorizer
}

func NewConversationService(
	conversations domain.ConversationRepository,
	participants domain.ParticipantRepository,
	users domain.UserRepository,
	authorizer *authz.Authorizer,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		participants:  participants,
		users:         users,
		authz:         authorizer,
	}
}

type ConversationCreateInput struct {
	Title          *string
	ParticipantIDs []int64
}

type ConversationUpdateInput struct {
	Title *string
}

// ParticipantInfo is the participant summary embedded in conversation
// responses.
type ParticipantInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ConversationResponse is a conversation with its participant set resolved.
type ConversationResponse struct {
	ID           int64             `json:"id"`
	Title        *string           `json:"title"`
	Participants []ParticipantInfo `json:"participants"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Create stores a new conversation. The creator becomes a participant in the
// same transaction as the insert; extra participant ids are validated first
// and added afterwards.
func (s *ConversationService) Create(ctx context.Context, in ConversationCreateInput, creator *domain.User) (*ConversationResponse, error) {
	others := make([]int64, 0, len(in.ParticipantIDs))
	seen := map[int64]struct{}{creator.ID: {}}
	for _, id := range in.ParticipantIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("check participant: %w", err)
		}
		if u == nil || !u.IsActive {
			return nil, domain.NewValidationError("participant_ids", fmt.Sprintf("user %d does not exist", id))
		}
		others = append(others, id)
	}

	now := time.Now().UTC()
	conv := &domain.Conversation{
		Title:     in.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.Create(ctx, conv, creator.ID); err != nil {
		return nil, err
	}
	for _, id := range others {
		if err := s.participants.Add(ctx, conv.ID, id); err != nil {
			return nil, err
		}
	}

	return s.toResponse(ctx, conv)
}

// Get returns a conversation visible to user. A conversation the user does
// not participate in is reported as not found, never as forbidden.
func (s *ConversationService) Get(ctx context.Context, id int64, user *domain.User) (*ConversationResponse, error) {
	conv, err := s.visibleConversation(ctx, id, user)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, conv)
}

// List returns one page of the user's conversations plus the total count.
func (s *ConversationService) List(ctx context.Context, user *domain.User, q domain.ConversationQuery, offset, limit int) ([]*ConversationResponse, int, error) {
	convs, count, err := s.conversations.List(ctx, user.ID, q, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]*ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		resp, err := s.toResponse(ctx, conv)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, resp)
	}
	return res, count, nil
}

// Update applies a partial metadata update. Omitted fields are unchanged.
func (s *ConversationService) Update(ctx context.Context, id int64, in ConversationUpdateInput, user *domain.User) (*ConversationResponse, error) {
	conv, err := s.visibleConversation(ctx, id, user)
	if err != nil {
		return nil, err
	}
	ok, err := s.authz.CanMutateConversation(ctx, user, conv)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}

	if in.Title != nil {
		conv.Title = in.Title
	}
	conv.UpdatedAt = time.Now().UTC()
	if err := s.conversations.Update(ctx, conv); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, conv)
}

// AddParticipant adds a user to a conversation the acting user participates
// in. Adding an existing participant is idempotent.
func (s *ConversationService) AddParticipant(ctx context.Context, conversationID, targetUserID int64, user *domain.User) (*ConversationResponse, error) {
	conv, err := s.visibleConversation(ctx, conversationID, user)
	if err != nil {
		return nil, err
	}
	ok, err := s.authz.CanMutateConversation(ctx, user, conv)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if target == nil || !target.IsActive {
		return nil, domain.NewValidationError("user", "user does not exist")
	}

	if err := s.participants.Add(ctx, conversationID, targetUserID); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, conv)
}

func (s *ConversationService) visibleConversation(ctx context.Context, id int64, user *domain.User) (*domain.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, domain.ErrNotFound
	}
	ok, err := s.authz.CanViewConversation(ctx, user, conv)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return conv, nil
}

func (s *ConversationService) toResponse(ctx context.Context, conv *domain.Conversation) (*ConversationResponse, error) {
	users, err := s.participants.ListParticipants(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	infos := make([]ParticipantInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, ParticipantInfo{ID: u.ID, Username: u.Username})
	}
	return &ConversationResponse{
		ID:           conv.ID,
		Title:        conv.Title,
		Participants: infos,
		CreatedAt:    conv.CreatedAt,
		UpdatedAt:    conv.UpdatedAt,
	}, nil
}
