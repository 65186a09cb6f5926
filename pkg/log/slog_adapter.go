package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger.
// Useful for development when you want to see store traffic in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("component", event.Component.String()),
		slog.String("category", event.Category.String()),
	}

	if event.Key != "" {
		attrs = append(attrs, slog.String("key", event.Key))
	}
	if event.ModelID != "" {
		attrs = append(attrs, slog.String("model_id", event.ModelID))
	}

	switch {
	case event.Subscription != nil:
		attrs = append(attrs,
			slog.String("action", event.Subscription.Action.String()),
			slog.Int("observers", event.Subscription.Observers),
		)
	case event.Value != nil:
		attrs = append(attrs,
			slog.Any("value", event.Value.Value),
			slog.Int("observers", event.Value.Observers),
		)
		if event.Value.Unavailable {
			attrs = append(attrs, slog.Bool("unavailable", true))
		}
		if event.Value.Optimistic {
			attrs = append(attrs, slog.Bool("optimistic", true))
		}
	case event.Write != nil:
		attrs = append(attrs,
			slog.String("phase", event.Write.Phase.String()),
			slog.Any("value", event.Write.Value),
		)
		if event.Write.Policy != "" {
			attrs = append(attrs, slog.String("policy", event.Write.Policy))
		}
		if event.Write.Error != "" {
			attrs = append(attrs, slog.String("error", event.Write.Error))
		}
		if event.Write.Duration != nil {
			attrs = append(attrs, slog.Duration("duration", *event.Write.Duration))
		}
	case event.Lifecycle != nil:
		attrs = append(attrs,
			slog.String("model", event.Lifecycle.Model),
			slog.String("old_state", event.Lifecycle.OldState),
			slog.String("new_state", event.Lifecycle.NewState),
			slog.Int("bindings", event.Lifecycle.Bindings),
		)
		if event.Lifecycle.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.Lifecycle.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.Bool("terminal", event.Error.Terminal),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
