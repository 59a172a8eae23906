package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/ielts-trainer/internal/config"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

const signInSubject = "Your IELTS Trainer sign-in link"

// Mailer delivers sign-in links.
type Mailer interface {
	SendSignInLink(ctx context.Context, email, link string) error
}

// CasdoorMailer sends mail through the Casdoor email provider of the configured application.
type CasdoorMailer struct {
	client *casdoorsdk.Client
	sender string
}

func NewCasdoorMailer(cfg config.CasdoorConfig, sender string) *CasdoorMailer {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.OrganizationName,
		cfg.ApplicationName,
	)
	return &CasdoorMailer{client: client, sender: sender}
}

func (m *CasdoorMailer) SendSignInLink(ctx context.Context, email, link string) error {
	if err := m.client.SendEmail(signInSubject, signInBody(link), m.sender, email); err != nil {
		return fmt.Errorf("casdoor send email failed: %w", err)
	}
	return nil
}

func signInBody(link string) string {
	return fmt.Sprintf(`<p>Click the link below to sign in to IELTS Trainer.</p>
<p><a href="%s">Sign in</a></p>
<p>The link works once. If you did not ask for it, ignore this email.</p>`, link)
}

// LogMailer writes the link to the log. Development only.
type LogMailer struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent map[string]string
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger, sent: make(map[string]string)}
}

func (m *LogMailer) SendSignInLink(ctx context.Context, email, link string) error {
	m.mu.Lock()
	m.sent[email] = link
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "Sign-in link issued", "email", email, "link", link)
	return nil
}

// LastLink returns the most recent link sent to email.
func (m *LogMailer) LastLink(email string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.sent[email]
	return link, ok
}

// NewMailer picks the mailer named by configuration.
func NewMailer(cfg *config.Config, logger *slog.Logger) Mailer {
	if cfg.Mail.Mailer == config.MailerCasdoor {
		return NewCasdoorMailer(cfg.Casdoor, cfg.Mail.Sender)
	}
	return NewLogMailer(logger)
}
