package auth

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidToken covers absent, malformed, expired and revoked tokens.
	ErrInvalidToken = errors.New("invalid or expired session token")
	// ErrInvalidCode is returned for unknown, expired or already used sign-in codes.
	ErrInvalidCode  = errors.New("invalid or expired sign-in code")
	ErrInvalidEmail = errors.New("invalid email address")
)

// Session is the authenticated user of one request.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	SessionID string    `json:"session_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Provider issues and verifies sessions. Sign-in is passwordless: the user
// receives a link carrying a one-time code that is exchanged for a session.
type Provider interface {
	SendSignInLink(ctx context.Context, email, redirectTo string) error
	ExchangeCode(ctx context.Context, code string) (*Session, error)
	GetUser(ctx context.Context, token string) (*Session, error)
	SignOut(ctx context.Context, token string) error
}

// IsCredentialError reports whether err is the caller's fault rather than an outage.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrInvalidCode) ||
		errors.Is(err, ErrInvalidEmail)
}
