// Package authz decides what a given user may see and change. Every service
// operation consults it before acting; there is no bypass path.
//
// Denial policy: callers translate a false CanView into a not-found outcome,
// never a forbidden one, so the existence of conversations a user does not
// belong to is not revealed. A false CanMutate on a visible entity is a
// forbidden outcome.
package authz

import (
	"context"
	"fmt"

	"chatapi/internal/domain"
)

// Authorizer evaluates visibility and mutation rights against the current
// participation state. Checks are re-evaluated per operation; nothing is
// cached across requests, so a concurrent participant removal is observed by
// the next check.
type Authorizer struct {
	participants domain.ParticipantRepository
}

func New(participants domain.ParticipantRepository) *Authorizer {
	return &Authorizer{participants: participants}
}

// CanViewConversation reports whether user is a participant of c.
func (a *Authorizer) CanViewConversation(ctx context.Context, user *domain.User, c *domain.Conversation) (bool, error) {
	ok, err := a.participants.IsParticipant(ctx, c.ID, user.ID)
	if err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return ok, nil
}

// CanMutateConversation reports whether user may update c's metadata or add
// participants to it. Any current participant may.
func (a *Authorizer) CanMutateConversation(ctx context.Context, user *domain.User, c *domain.Conversation) (bool, error) {
	return a.CanViewConversation(ctx, user, c)
}

// CanViewMessage reports whether user participates in m's conversation.
func (a *Authorizer) CanViewMessage(ctx context.Context, user *domain.User, m *domain.Message) (bool, error) {
	ok, err := a.participants.IsParticipant(ctx, m.ConversationID, user.ID)
	if err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return ok, nil
}

// CanMutateMessage reports whether user may update or delete m: the user must
// be the sender and still a participant of the containing conversation.
func (a *Authorizer) CanMutateMessage(ctx context.Context, user *domain.User, m *domain.Message) (bool, error) {
	if m.SenderID != user.ID {
		return false, nil
	}
	return a.CanViewMessage(ctx, user, m)
}
