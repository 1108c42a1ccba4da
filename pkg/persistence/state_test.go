package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRegistryStateStore(t *testing.T) {
	t.Run("NewRegistryStateStore", func(t *testing.T) {
		dir := t.TempDir()
		store := NewRegistryStateStore(filepath.Join(dir, "state.json"))
		if store == nil {
			t.Fatal("NewRegistryStateStore() returned nil")
		}
	})

	t.Run("SaveSetsVersionAndTime", func(t *testing.T) {
		dir := t.TempDir()
		store := NewRegistryStateStore(filepath.Join(dir, "state.json"))

		state := &RegistryState{}
		if err := store.Save(state); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if state.Version != StateVersion {
			t.Errorf("Version = %d, want %d", state.Version, StateVersion)
		}
		if state.SavedAt.IsZero() {
			t.Error("SavedAt not set")
		}
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		dir := t.TempDir()
		store := NewRegistryStateStore(filepath.Join(dir, "nonexistent.json"))

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		// Should return nil (empty state) for non-existent file
		if got != nil {
			t.Errorf("Load() = %v, want nil for non-existent file", got)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		dir := t.TempDir()
		store := NewRegistryStateStore(filepath.Join(dir, "nested", "state.json"))

		state := &RegistryState{
			SavedAt:   time.Now().Add(-time.Hour),
			SessionID: "session-1",
			Models: []ModelState{
				{
					Key:  "left",
					Name: "hand",
					Locations: []SavedAddress{
						{GlobalID: 0, LocalID: 0, Address: "hand, finger | palmar"},
					},
					Areas: []SavedAddress{
						{GlobalID: 1, LocalID: 0, Address: "hand"},
					},
				},
				{Key: "right", Name: "hand"},
			},
		}

		if err := store.Save(state); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if diff := cmp.Diff(state, got); diff != "" {
			t.Errorf("Load() mismatch (-saved +loaded):\n%s", diff)
		}
		left, ok := got.Model("left")
		if !ok {
			t.Fatal("model left missing")
		}
		if len(left.Areas) != 1 || left.Areas[0].GlobalID != 1 {
			t.Errorf("Areas = %+v", left.Areas)
		}
		if _, ok := got.Model("missing"); ok {
			t.Error("Model(missing) should not be found")
		}
	})

	t.Run("NewerVersionRejected", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "state.json")
		if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := NewRegistryStateStore(path).Load()
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("Load() error = %v, want ErrUnsupportedVersion", err)
		}
	})

	t.Run("CorruptFile", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "state.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := NewRegistryStateStore(path).Load(); err == nil {
			t.Error("Load() expected error for corrupt file")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		dir := t.TempDir()
		store := NewRegistryStateStore(filepath.Join(dir, "state.json"))

		if err := store.Save(&RegistryState{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		got, err := store.Load()
		if err != nil || got != nil {
			t.Errorf("Load() after Clear = %v, %v; want nil, nil", got, err)
		}

		// Clearing a missing file is not an error.
		if err := store.Clear(); err != nil {
			t.Errorf("second Clear() error = %v", err)
		}
	})
}

func TestRegistryStateOrdered(t *testing.T) {
	state := &RegistryState{
		Models: []ModelState{
			{
				Key:       "a",
				Locations: []SavedAddress{{GlobalID: 0}, {GlobalID: 3}},
				Areas:     []SavedAddress{{GlobalID: 1}},
			},
			{
				Key:       "b",
				Locations: []SavedAddress{{GlobalID: 1}, {GlobalID: 2}},
				Areas:     []SavedAddress{{GlobalID: 0}},
			},
		},
	}

	locs := state.Ordered(false)
	wantKeys := []string{"a", "b", "b", "a"}
	if len(locs) != len(wantKeys) {
		t.Fatalf("len = %d, want %d", len(locs), len(wantKeys))
	}
	for i, e := range locs {
		if e.GlobalID != i {
			t.Errorf("[%d] GlobalID = %d", i, e.GlobalID)
		}
		if e.Key != wantKeys[i] {
			t.Errorf("[%d] Key = %q, want %q", i, e.Key, wantKeys[i])
		}
	}

	areas := state.Ordered(true)
	if len(areas) != 2 || areas[0].Key != "b" || areas[1].Key != "a" {
		t.Errorf("areas = %+v", areas)
	}
}
