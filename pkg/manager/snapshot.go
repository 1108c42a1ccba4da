package manager

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lhmcgann/estim-go/pkg/address"
	"github.com/lhmcgann/estim-go/pkg/persistence"
)

// ErrStateMismatch is returned when restored state does not line up with the
// registry it is replayed into.
var ErrStateMismatch = errors.New("registry state mismatch")

// Snapshot captures every saved address with its local and global IDs.
// Models are ordered by key and addresses by global ID.
func (m *Manager) Snapshot() *persistence.RegistryState {
	state := &persistence.RegistryState{SessionID: m.sessionID}

	for _, key := range m.ModelKeys() {
		model := m.models[key]
		ms := persistence.ModelState{Key: key, Name: model.Name()}
		ms.Locations = m.snapshotKind(key, address.KindLocation)
		ms.Areas = m.snapshotKind(key, address.KindArea)
		state.Models = append(state.Models, ms)
	}
	return state
}

func (m *Manager) snapshotKind(key string, kind address.Kind) []persistence.SavedAddress {
	b, _ := m.bijection(kind)
	model := m.models[key]

	var out []persistence.SavedAddress
	for _, local := range model.IDs(kind) {
		global, ok := b.global(key, local)
		if !ok {
			continue
		}
		spec, err := model.Retrieve(local, kind)
		if err != nil {
			continue
		}
		out = append(out, persistence.SavedAddress{
			GlobalID: global,
			LocalID:  local,
			Address:  spec.String(),
		})
	}
	sortByGlobal(out)
	return out
}

func sortByGlobal(list []persistence.SavedAddress) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].GlobalID < list[j].GlobalID
	})
}

// Restore replays a snapshot into this manager. Every model named in state
// must already be registered under the same key, and the manager must not
// hold any saved addresses yet. Saves are replayed in global-ID order, and
// each replayed save must reproduce the recorded local and global IDs.
//
// Restore stops at the first failure; addresses replayed before it stay
// saved. state.SessionID is not adopted: events emitted after a restore,
// including the replayed saves, carry this manager's own session ID.
func (m *Manager) Restore(state *persistence.RegistryState) error {
	if state == nil {
		return nil
	}
	if m.locations.len() > 0 || m.areas.len() > 0 {
		return fmt.Errorf("%w: registry already holds saved addresses", ErrStateMismatch)
	}
	for _, ms := range state.Models {
		if _, err := m.Model(ms.Key); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}

	for _, kind := range []address.Kind{address.KindLocation, address.KindArea} {
		for _, e := range state.Ordered(kind == address.KindArea) {
			spec, err := address.Parse(kind, e.Address)
			if err != nil {
				return fmt.Errorf("restore %s %d: %w", kind, e.GlobalID, err)
			}
			global, err := m.Save(e.Key, spec, kind)
			if err != nil {
				return fmt.Errorf("restore %s %d: %w", kind, e.GlobalID, err)
			}
			local, _ := m.localID(e.Key, global, kind)
			if global != e.GlobalID || local != e.LocalID {
				return fmt.Errorf("%w: %s %q in %s restored as %d/%d, recorded %d/%d",
					ErrStateMismatch, kind, e.Address, e.Key, local, global, e.LocalID, e.GlobalID)
			}
		}
	}

	m.debugLog("restored", "models", len(state.Models),
		"locations", m.locations.len(), "areas", m.areas.len())
	return nil
}

func (m *Manager) localID(key string, global int, kind address.Kind) (int, bool) {
	b, err := m.bijection(kind)
	if err != nil {
		return 0, false
	}
	ref, ok := b.local(global)
	if !ok || ref.key != key {
		return 0, false
	}
	return ref.id, true
}
