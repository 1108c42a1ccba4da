package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lhmcgann/estim-go/pkg/address"
	"github.com/lhmcgann/estim-go/pkg/manager"
	"github.com/lhmcgann/estim-go/pkg/persistence"
)

// Session is a loaded session file with its paths resolved.
type Session struct {
	// File is the session file path.
	File string

	// StatePath is the resolved registry state file, or empty.
	StatePath string

	// Models holds the entries with File resolved against the session
	// file's directory.
	Models []SessionModel
}

// ParseSession parses a session file from bytes. Relative paths are resolved
// against baseDir.
func ParseSession(data []byte, baseDir string) (*Session, error) {
	var sf SessionFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}
	if len(sf.Models) == 0 {
		return nil, &LoadError{
			Message: "session must list at least one model",
		}
	}

	s := &Session{StatePath: resolve(baseDir, sf.State)}
	for i, m := range sf.Models {
		if m.File == "" {
			return nil, &LoadError{
				Message: fmt.Sprintf("model %d: file is required", i),
			}
		}
		m.File = resolve(baseDir, m.File)
		s.Models = append(s.Models, m)
	}
	return s, nil
}

// LoadSession loads a session file.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	s, err := ParseSession(data, filepath.Dir(path))
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, err
	}
	s.File = path
	return s, nil
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || strings.HasPrefix(path, BuiltinPrefix) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Open builds a manager from the session: every model is loaded and
// registered, the state file is restored if it exists, and the listed
// addresses are saved.
func (s *Session) Open(opts ...manager.Option) (*manager.Manager, error) {
	m := manager.New(opts...)

	templates := make(map[string]*Template)
	keys := make([]string, len(s.Models))
	for i, sm := range s.Models {
		t, ok := templates[sm.File]
		if !ok {
			var err error
			t, err = Open(sm.File)
			if err != nil {
				return nil, err
			}
			templates[sm.File] = t
		}

		model, err := t.NewModel()
		if err != nil {
			return nil, err
		}
		key, err := m.AddModel(model, sm.Key)
		if err != nil {
			return nil, s.wrap("register model", err)
		}
		keys[i] = key
	}

	if s.StatePath != "" {
		state, err := persistence.NewRegistryStateStore(s.StatePath).Load()
		if err != nil {
			return nil, s.wrap("load state", err)
		}
		if err := m.Restore(state); err != nil {
			return nil, s.wrap("restore state", err)
		}
	}

	for i, sm := range s.Models {
		key := keys[i]
		for _, text := range sm.Locations {
			if _, err := m.SaveText(key, address.KindLocation, text); err != nil {
				return nil, s.wrap("save location", err)
			}
		}
		for _, text := range sm.Areas {
			if _, err := m.SaveText(key, address.KindArea, text); err != nil {
				return nil, s.wrap("save area", err)
			}
		}
	}
	return m, nil
}

func (s *Session) wrap(msg string, err error) error {
	return &LoadError{File: s.File, Message: msg, Cause: err}
}
