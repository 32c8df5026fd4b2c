package mail

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogSender records messages in the log instead of delivering them. It is
// meant for local development.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender constructs a logging sender.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "mail_log").Logger()}
}

// Send logs the envelope and reports success. Bodies are not logged.
func (s *LogSender) Send(ctx context.Context, msg Message) (Result, error) {
	if err := msg.Validate(); err != nil {
		return Result{}, err
	}

	id := "log-" + uuid.NewString()
	s.logger.Info().
		Str("message_id", id).
		Int("recipients", len(msg.To)).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTML)).
		Int("text_bytes", len(msg.Text)).
		Msg("mail delivered to log")

	return Result{MessageID: id, SentAt: time.Now().UTC()}, nil
}

// Verify always succeeds.
func (s *LogSender) Verify(context.Context) error {
	return nil
}

// Provider returns ProviderLog.
func (s *LogSender) Provider() string {
	return ProviderLog
}
