package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// ErrUnsupportedVersion is returned when a state file was written by a newer
// format version.
var ErrUnsupportedVersion = errors.New("unsupported state version")

// RegistryState contains the saved addresses of every model in a registry.
type RegistryState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// SessionID identifies the registry that produced the state.
	SessionID string `json:"session_id,omitempty"`

	// Models holds one entry per registered model, sorted by key.
	Models []ModelState `json:"models,omitempty"`
}

// ModelState contains the saved addresses of one model.
type ModelState struct {
	// Key is the registry key the model was added under.
	Key string `json:"key"`

	// Name is the model's own name.
	Name string `json:"name,omitempty"`

	// Locations are the saved locations, sorted by global ID.
	Locations []SavedAddress `json:"locations,omitempty"`

	// Areas are the saved areas, sorted by global ID.
	Areas []SavedAddress `json:"areas,omitempty"`
}

// SavedAddress is one saved location or area.
type SavedAddress struct {
	GlobalID int    `json:"global_id"`
	LocalID  int    `json:"local_id"`
	Address  string `json:"address"`
}

// Model returns the entry for key.
func (s *RegistryState) Model(key string) (ModelState, bool) {
	for _, m := range s.Models {
		if m.Key == key {
			return m, true
		}
	}
	return ModelState{}, false
}

// Entry pairs a saved address with the key of the model it belongs to.
type Entry struct {
	Key string
	SavedAddress
}

// Ordered returns the saved locations (areas when areas is true) of every
// model merged into one list ordered by global ID.
func (s *RegistryState) Ordered(areas bool) []Entry {
	var out []Entry
	for _, m := range s.Models {
		list := m.Locations
		if areas {
			list = m.Areas
		}
		for _, a := range list {
			out = append(out, Entry{Key: m.Key, SavedAddress: a})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GlobalID < out[j].GlobalID
	})
	return out
}

// RegistryStateStore manages persistence of registry state to a JSON file.
type RegistryStateStore struct {
	mu   sync.Mutex
	path string
}

// NewRegistryStateStore creates a new registry state store.
func NewRegistryStateStore(path string) *RegistryStateStore {
	return &RegistryStateStore{path: path}
}

// Path returns the state file path.
func (s *RegistryStateStore) Path() string {
	return s.path
}

// Save persists the registry state to disk.
func (s *RegistryStateStore) Save(state *RegistryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the registry state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *RegistryStateStore) Load() (*RegistryState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &RegistryState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	if state.Version > StateVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, state.Version)
	}

	return state, nil
}

// Clear removes the state file.
func (s *RegistryStateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
