package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes emails to the log instead of sending them. It is used when
// no SMTP relay is configured.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, to, subject, htmlBody string) error {
	s.log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", htmlBody).
		Msg("dummy email")
	return nil
}
