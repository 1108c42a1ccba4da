// Package log provides structured event capture for the localization engine.
//
// Every registry operation (adding a model, saving an address, answering a
// localization query) can be recorded as an [Event]. This is separate from
// operational logging (slog): the event log is a complete machine-readable
// trace that can be replayed, filtered and inspected after a session.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	m := manager.New(manager.WithLogger(log.NewSlogAdapter(slog.Default())))
//
//	// For sessions: write a binary event file
//	fl, _ := log.NewFileLogger("/var/log/estim/session.elog")
//	m := manager.New(manager.WithLogger(fl))
//
//	// Both
//	m := manager.New(manager.WithLogger(log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()), fl,
//	)))
//
// # File Format
//
// Event files are a stream of CBOR-encoded events with integer keys, using
// the .elog extension. The estim-loc CLI can view and summarize them.
package log
