package service

import (
	"context"

	"chatapi/internal/domain"
)

// UserService provides user lookup for participant discovery.
type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]*domain.User, int, error) {
	return s.users.List(ctx, offset, limit)
}
