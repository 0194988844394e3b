package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-system/internal/core/domain"
)

// LogMailer writes verification messages to the log instead of sending them.
// It is the transport used when no broker is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendVerification(_ context.Context, msg domain.VerificationMessage) error {
	ev := m.log.Info().
		Str("to", msg.To).
		Str("user_id", msg.UserID).
		Time("expires_at", msg.ExpiresAt)
	if msg.Link != "" {
		ev = ev.Str("link", msg.Link)
	} else {
		ev = ev.Str("token", msg.Token)
	}
	ev.Msg("verification mail")
	return nil
}
