package infra

import "github.com/rs/zerolog/log"

// Notifier is the toast/alert surface for user-initiated ledger actions.
// The core reports outcomes through it without defining any rendering.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to the structured log. The UI layer is
// expected to surface the Notice field carried on responses instead.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (LogNotifier) Success(msg string) {
	log.Info().Str("notice", msg).Msg("notification")
}

func (LogNotifier) Error(msg string) {
	log.Warn().Str("notice", msg).Msg("notification")
}
