package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger.
// Useful during development to see registry activity on the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event at Debug level, or Warn for error events.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("category", event.Category.String()),
	}
	if event.ModelKey != "" {
		attrs = append(attrs, slog.String("model", event.ModelKey))
	}

	level := slog.LevelDebug
	switch {
	case event.Model != nil:
		attrs = append(attrs,
			slog.String("model_name", event.Model.Name),
			slog.Int("regions", event.Model.Regions),
		)
	case event.Save != nil:
		attrs = append(attrs,
			slog.String("kind", event.Save.Kind.String()),
			slog.String("address", event.Save.Address),
			slog.Int("local_id", event.Save.LocalID),
			slog.Int("global_id", event.Save.GlobalID),
			slog.Bool("new", event.Save.IsNew),
		)
	case event.Localize != nil:
		attrs = append(attrs,
			slog.String("address", event.Localize.Address),
			slog.Any("fully", event.Localize.Fully),
			slog.Any("partially", event.Localize.Partially),
		)
		if event.Localize.Duration > 0 {
			attrs = append(attrs, slog.Duration("duration", event.Localize.Duration))
		}
	case event.Error != nil:
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("operation", event.Error.Operation),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Address != "" {
			attrs = append(attrs, slog.String("address", event.Error.Address))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "estim", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
