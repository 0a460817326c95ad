package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/pkg/logger"
)

// LogSink writes auth events to the log. It backs the audit trail when no
// database is configured.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "audit").Logger()}
}

func (s *LogSink) InsertAuthEvent(_ context.Context, e domain.AuthEvent) error {
	s.log.Info().
		Str("session_id", e.SessionID).
		Str("kind", string(e.Kind)).
		Str("email", logger.MaskEmail(e.Email)).
		Str("role", string(e.Role)).
		Time("at", e.At).
		Msg("auth event")
	return nil
}
