package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNotRefreshToken = errors.New("token is not a refresh token")

// TokenService wraps JWT creation and validation for the access/refresh pair.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// CreateAccessToken creates a short-lived access JWT for the given username.
func (t *TokenService) CreateAccessToken(username string) (string, error) {
	return t.create(username, t.accessTTL, nil)
}

// CreateRefreshToken creates a refresh JWT. Refresh tokens carry a "typ"
// claim so they cannot be presented as access tokens, and a uuid "jti".
func (t *TokenService) CreateRefreshToken(username string) (string, error) {
	return t.create(username, t.refreshTTL, jwt.MapClaims{
		"typ": "refresh",
		"jti": uuid.NewString(),
	})
}

func (t *TokenService) create(username string, ttl time.Duration, extra jwt.MapClaims) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates a token and returns its claims.
func (t *TokenService) Parse(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		return claims, nil
	}
	return nil, jwt.ErrTokenMalformed
}

// ParseAccess validates an access token and returns its subject. Refresh
// tokens are rejected.
func (t *TokenService) ParseAccess(tokenStr string) (string, error) {
	claims, err := t.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	if typ, _ := claims["typ"].(string); typ == "refresh" {
		return "", jwt.ErrTokenInvalidClaims
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return sub, nil
}

// ParseRefresh validates a refresh token and returns its subject.
func (t *TokenService) ParseRefresh(tokenStr string) (string, error) {
	claims, err := t.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return "", ErrNotRefreshToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return sub, nil
}
