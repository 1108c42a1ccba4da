package manager

import (
	"log/slog"

	"github.com/lhmcgann/estim-go/pkg/idpool"
	"github.com/lhmcgann/estim-go/pkg/log"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the event logger. Defaults to log.NoopLogger.
func WithLogger(logger log.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.events = logger
		}
	}
}

// WithSlog sets the operational logger. Nil disables debug output.
func WithSlog(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithAllocators sets the allocators that issue global location and area IDs.
// A nil allocator keeps the default.
func WithAllocators(locations, areas idpool.Allocator) Option {
	return func(m *Manager) {
		if locations != nil {
			m.locations.ids = locations
		}
		if areas != nil {
			m.areas.ids = areas
		}
	}
}

// WithSessionID sets the session ID stamped on every event. Defaults to a
// random UUID.
func WithSessionID(id string) Option {
	return func(m *Manager) {
		if id != "" {
			m.sessionID = id
		}
	}
}
