package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatapi/internal/domain"
	"chatapi/internal/security"
)

// AuthService handles registration and token issuance. Token parsing and
// signing are delegated to the security package; this service only decides
// when a token pair may be issued.
type AuthService struct {
	users  domain.UserRepository
	tokens *security.TokenService
	hash   *security.PasswordHasher
}

func NewAuthService(users domain.UserRepository, tokens *security.TokenService, hash *security.PasswordHasher) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hash:   hash,
	}
}

type RegisterInput struct {
	Username string
	Email    *string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

// TokenPair is the access/refresh pair returned on login and registration.
type TokenPair struct {
	Access  string
	Refresh string
	User    *domain.User
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)

	verr := &domain.ValidationError{}
	if in.Username == "" {
		verr.Add("username", "this field is required")
	}
	if in.Password == "" {
		verr.Add("password", "this field is required")
	}
	if !verr.Empty() {
		return nil, verr
	}

	if existing, err := s.users.GetByUsername(ctx, in.Username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if existing != nil {
		return nil, domain.ErrConflict
	}

	if in.Email != nil && *in.Email != "" {
		if existing, err := s.users.GetByEmail(ctx, *in.Email); err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		} else if existing != nil {
			return nil, domain.ErrConflict
		}
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hashed,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues an access/refresh pair. Unknown
// username and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.hash.Verify(in.Password, user.HashedPassword); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issuePair(user)
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	username, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", domain.ErrUnauthorized
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return "", domain.ErrUnauthorized
	}

	access, err := s.tokens.CreateAccessToken(user.Username)
	if err != nil {
		return "", fmt.Errorf("create access token: %w", err)
	}
	return access, nil
}

func (s *AuthService) issuePair(user *domain.User) (*TokenPair, error) {
	access, err := s.tokens.CreateAccessToken(user.Username)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}
	refresh, err := s.tokens.CreateRefreshToken(user.Username)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}
	return &TokenPair{
		Access:  access,
		Refresh: refresh,
		User:    user,
	}, nil
}
