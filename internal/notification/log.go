package notification

import (
	"context"
	"log/slog"

	"signup/pkg/email"
)

// LogSender writes messages to the log instead of delivering them. It is the
// fallback when no transport is configured. The body is logged at debug level
// so local setups can pick up activation tokens.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	recipients := make([]string, len(msg.To))
	for i, addr := range msg.To {
		recipients[i] = email.Mask(addr)
	}
	s.logger.InfoContext(ctx, "notification",
		"recipients", recipients,
		"subject", msg.Subject,
	)
	s.logger.DebugContext(ctx, "notification body", "body", msg.Body)
	return nil
}
