package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/SAP-F-2025/ielts-trainer/internal/cache"
	"github.com/go-playground/validator/v10"
)

const (
	codeKeyPrefix    = "auth:signin_code:"
	revokedKeyPrefix = "auth:revoked:"
	codeBytes        = 24
)

type pendingSignIn struct {
	Email string `json:"email"`
}

type ProviderConfig struct {
	CodeTTL time.Duration
}

type magicLinkProvider struct {
	cache     cache.CacheService
	tokens    *TokenIssuer
	mailer    Mailer
	directory UserDirectory
	validate  *validator.Validate
	codeTTL   time.Duration
	logger    *slog.Logger
}

func NewMagicLinkProvider(
	cacheService cache.CacheService,
	tokens *TokenIssuer,
	mailer Mailer,
	directory UserDirectory,
	cfg ProviderConfig,
	logger *slog.Logger,
) Provider {
	return &magicLinkProvider{
		cache:     cacheService,
		tokens:    tokens,
		mailer:    mailer,
		directory: directory,
		validate:  validator.New(),
		codeTTL:   cfg.CodeTTL,
		logger:    logger,
	}
}

// SendSignInLink stores a one-time code for the email and mails redirectTo?code=<code>.
func (p *magicLinkProvider) SendSignInLink(ctx context.Context, email, redirectTo string) error {
	email = strings.TrimSpace(email)
	if err := p.validate.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail
	}

	link, err := url.Parse(redirectTo)
	if err != nil || !link.IsAbs() {
		return fmt.Errorf("invalid redirect url %q", redirectTo)
	}

	code, err := randomCode()
	if err != nil {
		return err
	}
	if err := p.cache.Set(ctx, codeKeyPrefix+code, pendingSignIn{Email: email}, p.codeTTL); err != nil {
		return fmt.Errorf("failed to store sign-in code: %w", err)
	}

	query := link.Query()
	query.Set("code", code)
	link.RawQuery = query.Encode()

	if err := p.mailer.SendSignInLink(ctx, email, link.String()); err != nil {
		// The code is useless without the mail
		if delErr := p.cache.Delete(ctx, codeKeyPrefix+code); delErr != nil {
			p.logger.WarnContext(ctx, "Failed to drop undelivered sign-in code", "error", delErr)
		}
		return fmt.Errorf("failed to send sign-in link: %w", err)
	}

	p.logger.InfoContext(ctx, "Sign-in link sent", "email", email)
	return nil
}

// ExchangeCode consumes the code and opens a session. A code works once.
func (p *magicLinkProvider) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrInvalidCode
	}

	var pending pendingSignIn
	if err := p.cache.Take(ctx, codeKeyPrefix+code, &pending); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to read sign-in code: %w", err)
	}

	userID, err := p.directory.ResolveByEmail(ctx, pending.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	session, err := p.tokens.Issue(userID, pending.Email)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "Session opened", "user_id", userID, "session_id", session.SessionID)
	return session, nil
}

// GetUser returns the session behind token. Revoked sessions are invalid.
func (p *magicLinkProvider) GetUser(ctx context.Context, token string) (*Session, error) {
	session, err := p.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := p.cache.Exists(ctx, revokedKeyPrefix+session.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session revocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return session, nil
}

// SignOut revokes the session until its token would have expired anyway.
func (p *magicLinkProvider) SignOut(ctx context.Context, token string) error {
	session, err := p.tokens.Parse(token)
	if err != nil {
		// Nothing to revoke
		return nil
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := p.cache.Set(ctx, revokedKeyPrefix+session.SessionID, true, ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	p.logger.InfoContext(ctx, "Session closed", "user_id", session.UserID, "session_id", session.SessionID)
	return nil
}

func randomCode() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate sign-in code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
