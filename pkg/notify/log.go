package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes notifications to a zerolog logger.
type LogNotifier struct {
	logger zerolog.Logger
}

var _ Notifier = &LogNotifier{}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) {
	ev := l.logger.Info()
	switch n.Level {
	case LevelError:
		ev = l.logger.Error()
	case LevelWarn:
		ev = l.logger.Warn()
	}
	if n.Kind != "" {
		ev = ev.Str("kind", n.Kind)
	}
	if n.Status > 0 {
		ev = ev.Int("status", n.Status)
	}
	if n.Path != "" {
		ev = ev.Str("method", n.Method).Str("path", n.Path)
	}
	ev.Msg(n.Message)
}
