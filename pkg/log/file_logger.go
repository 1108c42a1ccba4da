package log

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// FileLogger appends registry events to an event log file. It is safe for
// concurrent use.
//
// Log has no error return, so the first failed write is kept and reported
// by Err and Close. Later events are still attempted.
type FileLogger struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	encoder *EventEncoder
	err     error
	closed  bool
}

// NewFileLogger opens the event log at path for appending, creating it with
// permissions 0644 if needed.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	return &FileLogger{
		path:    path,
		file:    f,
		encoder: NewEventEncoder(f),
	}, nil
}

// Log appends event. Events logged after Close are dropped.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err := l.encoder.Encode(event); err != nil && l.err == nil {
		l.err = fmt.Errorf("%s: %s event: %w", l.path, event.Category, err)
	}
}

// Count returns the number of events written by this logger.
func (l *FileLogger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.encoder.Count()
}

// Err returns the first write failure, if any.
func (l *FileLogger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close closes the file and returns the first write failure together with
// any close error. Calling Close again returns nil.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return errors.Join(l.err, l.file.Close())
}

var _ Logger = (*FileLogger)(nil)
