// Package commands implements the estim-loc CLI commands.
package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/lhmcgann/estim-go/pkg/loader"
	"github.com/lhmcgann/estim-go/pkg/log"
	"github.com/lhmcgann/estim-go/pkg/manager"
	"github.com/lhmcgann/estim-go/pkg/persistence"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitValidation   = 2
)

// RegistryOptions selects the models a command works on and where its events
// go.
type RegistryOptions struct {
	Session string // session file
	Model   string // single model file (alternative to Session)
	Key     string // key for Model, or the default model of a session
	State   string // state file, overrides the session's
	LogFile string // CBOR event log
	Trace   bool   // print events to stderr
	Verbose bool   // debug logging to stderr
}

func (o *RegistryOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.Session, "session", "", "Session file listing models and saved addresses")
	fs.StringVar(&o.Model, "model", "", "Single model description file, or builtin:<name>")
	fs.StringVar(&o.Key, "key", "", "Model key (default: model name, or first session model)")
	fs.StringVar(&o.State, "state", "", "Registry state file (overrides the session's)")
	fs.StringVar(&o.LogFile, "log", "", "Write events to a CBOR log file (.elog)")
	fs.BoolVar(&o.Trace, "trace", false, "Print events to stderr")
	fs.BoolVar(&o.Verbose, "verbose", false, "Enable debug logging")
}

// Registry is an opened model registry.
type Registry struct {
	Manager *manager.Manager

	// DefaultKey is the model queried when none is named.
	DefaultKey string

	// Store persists the registry state, or nil when no state file is set.
	Store *persistence.RegistryStateStore

	closers []io.Closer
}

// Close releases the registry's event log.
func (r *Registry) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// SaveState writes the registry state if a state file is configured.
func (r *Registry) SaveState() error {
	if r.Store == nil {
		return nil
	}
	return r.Store.Save(r.Manager.Snapshot())
}

// Open builds the registry the options describe.
func (o *RegistryOptions) Open(stderr io.Writer) (*Registry, error) {
	if (o.Session == "") == (o.Model == "") {
		return nil, errors.New("exactly one of -session or -model is required")
	}

	reg := &Registry{}
	var opts []manager.Option

	var loggers []log.Logger
	if o.LogFile != "" {
		fl, err := log.NewFileLogger(o.LogFile)
		if err != nil {
			return nil, fmt.Errorf("open event log: %w", err)
		}
		loggers = append(loggers, fl)
		reg.closers = append(reg.closers, fl)
	}
	if o.Trace {
		handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, log.NewSlogAdapter(slog.New(handler)))
	}
	if len(loggers) > 0 {
		opts = append(opts, manager.WithLogger(log.NewMultiLogger(loggers...)))
	}
	if o.Verbose {
		handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, manager.WithSlog(slog.New(handler)))
	}

	statePath := o.State
	if o.Session != "" {
		s, err := loader.LoadSession(o.Session)
		if err != nil {
			reg.Close()
			return nil, err
		}
		if statePath != "" {
			s.StatePath = statePath
		}
		statePath = s.StatePath

		m, err := s.Open(opts...)
		if err != nil {
			reg.Close()
			return nil, err
		}
		reg.Manager = m
		reg.DefaultKey = o.Key
		if reg.DefaultKey == "" {
			if keys := m.ModelKeys(); len(keys) > 0 {
				reg.DefaultKey = keys[0]
			}
		}
	} else {
		tmpl, err := loader.Open(o.Model)
		if err != nil {
			reg.Close()
			return nil, err
		}
		model, err := tmpl.NewModel()
		if err != nil {
			reg.Close()
			return nil, err
		}
		m := manager.New(opts...)
		key, err := m.AddModel(model, o.Key)
		if err != nil {
			reg.Close()
			return nil, err
		}
		if statePath != "" {
			state, err := persistence.NewRegistryStateStore(statePath).Load()
			if err != nil {
				reg.Close()
				return nil, err
			}
			if err := m.Restore(state); err != nil {
				reg.Close()
				return nil, err
			}
		}
		reg.Manager = m
		reg.DefaultKey = key
	}

	if statePath != "" {
		reg.Store = persistence.NewRegistryStateStore(statePath)
	}
	return reg, nil
}
