// Package auth issues and verifies HS256 access tokens for registered
// users and anonymous guest sessions, and hashes account passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/haawall/haawall-go/internal/errors"
	"github.com/haawall/haawall-go/internal/storage"
)

// Claims is the JWT payload.
type Claims struct {
	UserID   int64  `json:"uid,omitempty"`
	Email    string `json:"email,omitempty"`
	UserType string `json:"user_type"`
	Guest    bool   `json:"guest,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token belongs to an administrator.
func (c *Claims) IsAdmin() bool {
	return c.UserType == storage.UserTypeAdmin
}

// Manager issues and verifies tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token manager. ttl bounds every issued token.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Manager{secret: []byte(secret), ttl: ttl}, nil
}

// IssueToken creates an access token for a registered user.
func (m *Manager) IssueToken(user *storage.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Email:    user.Email,
		UserType: user.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}
	return m.sign(claims)
}

// IssueGuestToken creates an anonymous session token. The subject is a
// fresh session id usable as the chat session key.
func (m *Manager) IssueGuestToken() (token, sessionID string, err error) {
	now := time.Now()
	sessionID = uuid.NewString()
	claims := &Claims{
		UserType: storage.UserTypeGuest,
		Guest:    true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}
	token, err = m.sign(claims)
	return token, sessionID, err
}

// ParseToken verifies a token and returns its claims.
// Invalid or expired tokens yield ErrUnauthorized.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}

func (m *Manager) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
