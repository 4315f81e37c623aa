// AngelaMos | 2026
// mailer.go

package auth

import (
	"context"
	"log/slog"
)

// Mailer delivers account emails. The production deployment fronts an SMTP
// relay; development and tests use LogMailer.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, verifyURL string) error
	SendPasswordResetEmail(ctx context.Context, to, code string) error
}

// LogMailer writes outgoing mail to the structured log instead of sending
// it. Reset codes are never logged.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendVerificationEmail(
	ctx context.Context,
	to, verifyURL string,
) error {
	m.logger.InfoContext(ctx, "verification email",
		slog.String("to", to),
		slog.String("verify_url", verifyURL),
	)
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(
	ctx context.Context,
	to, _ string,
) error {
	m.logger.InfoContext(ctx, "password reset email",
		slog.String("to", to),
	)
	return nil
}
