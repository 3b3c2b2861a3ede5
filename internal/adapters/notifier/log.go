package notifier

import (
	"context"
	"log/slog"

	"github.com/target/mmk-ui-session/internal/ports"
)

// Log records notices as structured log entries. Confirm always answers with Default,
// which lets headless hosts run flows that ask the user a question.
type Log struct {
	logger  *slog.Logger
	Default bool
}

// NewLog creates a Log notifier. A nil logger falls back to slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger.With("component", "notifier")}
}

func (l *Log) Notify(ctx context.Context, n ports.Notice) error {
	l.logger.Log(ctx, levelFor(n.Icon), "notice",
		"icon", string(n.Icon),
		"title", n.Title,
		"text", n.Text,
	)
	return nil
}

func (l *Log) Confirm(ctx context.Context, n ports.Notice) (bool, error) {
	l.logger.InfoContext(ctx, "confirmation requested",
		"title", n.Title,
		"text", n.Text,
		"answer", l.Default,
	)
	return l.Default, nil
}

func levelFor(icon ports.Icon) slog.Level {
	switch icon {
	case ports.IconError:
		return slog.LevelError
	case ports.IconWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
