package body

import (
	"errors"
	"fmt"

	"github.com/lhmcgann/estim-go/pkg/address"
	"github.com/lhmcgann/estim-go/pkg/idpool"
)

// Model errors.
var (
	ErrNilTemplate     = errors.New("nil region template")
	ErrInvalidModifier = errors.New("invalid modifier spec")
	ErrKindMismatch    = errors.New("address kind mismatch")
	ErrNotFound        = errors.New("saved address not found")
)

// Model is one instantiated body model: a private region tree plus registries
// of saved locations and areas. Model is not safe for concurrent use.
type Model struct {
	name string
	root *Region

	locations map[int]address.Spec
	areas     map[int]address.Spec

	locationIDs idpool.Allocator
	areaIDs     idpool.Allocator
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithAllocators sets the allocators that issue local location and area IDs.
func WithAllocators(locations, areas idpool.Allocator) ModelOption {
	return func(m *Model) {
		if locations != nil {
			m.locationIDs = locations
		}
		if areas != nil {
			m.areaIDs = areas
		}
	}
}

// NewModel creates a model named name from a deep copy of template. The
// template itself is never referenced by the model.
func NewModel(name string, template *Region, opts ...ModelOption) (*Model, error) {
	if template == nil {
		return nil, ErrNilTemplate
	}

	m := &Model{
		name:        name,
		root:        template.DeepCopy(nil),
		locations:   make(map[int]address.Spec),
		areas:       make(map[int]address.Spec),
		locationIDs: idpool.New(0),
		areaIDs:     idpool.New(0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Name returns the model name.
func (m *Model) Name() string {
	return m.name
}

// Root returns the model's region tree. Callers must treat it as read-only.
func (m *Model) Root() *Region {
	return m.root
}

func (m *Model) registry(kind address.Kind) (map[int]address.Spec, idpool.Allocator, error) {
	switch kind {
	case address.KindLocation:
		return m.locations, m.locationIDs, nil
	case address.KindArea:
		return m.areas, m.areaIDs, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown kind %d", ErrKindMismatch, kind)
	}
}

// Resolve returns the region spec's path resolves to.
func (m *Model) Resolve(spec address.Spec) (*Region, error) {
	return m.root.Resolve(spec.Regions())
}

// Validate resolves spec and checks its modifiers against the resolved
// region.
func (m *Model) Validate(spec address.Spec) (*Region, error) {
	region, err := m.Resolve(spec)
	if err != nil {
		return nil, err
	}
	if !region.ValidModifiers(spec.Modifiers()) {
		return nil, fmt.Errorf("%w: %q on %s", ErrInvalidModifier, spec.String(), region.Name())
	}
	return region, nil
}

// Save registers spec as a location or area and returns its local ID.
//
// Deduplication is scoped to the resolved region: if a value-equal address is
// already saved there its ID is returned with isNew false. A new ID is only
// reserved once the address has been resolved and validated.
func (m *Model) Save(spec address.Spec, kind address.Kind) (id int, isNew bool, err error) {
	if spec.Kind() != kind {
		return 0, false, fmt.Errorf("%w: %s address saved as %s", ErrKindMismatch, spec.Kind(), kind)
	}
	saved, ids, err := m.registry(kind)
	if err != nil {
		return 0, false, err
	}

	region, err := m.Validate(spec)
	if err != nil {
		return 0, false, err
	}

	regionIDs := region.savedIDs(kind)
	for _, existing := range regionIDs.Sorted() {
		if saved[existing].Equal(spec) {
			return existing, false, nil
		}
	}

	id, err = idpool.Next(ids)
	if err != nil {
		return 0, false, fmt.Errorf("allocate %s id: %w", kind, err)
	}
	saved[id] = spec
	regionIDs.Add(id)
	return id, true, nil
}

// Retrieve returns the address saved under id.
func (m *Model) Retrieve(id int, kind address.Kind) (address.Spec, error) {
	saved, _, err := m.registry(kind)
	if err != nil {
		return address.Spec{}, err
	}
	spec, ok := saved[id]
	if !ok {
		return address.Spec{}, fmt.Errorf("%w: %s %d in %s", ErrNotFound, kind, id, m.name)
	}
	return spec, nil
}

// IDs returns the sorted local IDs saved for kind.
func (m *Model) IDs(kind address.Kind) []int {
	saved, _, err := m.registry(kind)
	if err != nil {
		return nil
	}
	set := make(IDSet, len(saved))
	for id := range saved {
		set.Add(id)
	}
	return set.Sorted()
}

// Len returns the number of saved addresses of kind.
func (m *Model) Len(kind address.Kind) int {
	saved, _, err := m.registry(kind)
	if err != nil {
		return 0
	}
	return len(saved)
}

// FindContainingAreas returns the saved areas that fully or partially
// contain spec. Areas saved on the region spec resolves to and on every
// ancestor of it are considered; a coarser area contains a deeper address
// when its modifiers are a subset of the address's.
func (m *Model) FindContainingAreas(spec address.Spec) (Localization, error) {
	region, err := m.Resolve(spec)
	if err != nil {
		return NewLocalization(), err
	}

	result := NewLocalization()
	for r := region; r != nil; r = r.parent {
		for id := range r.savedAreaIDs {
			res := address.Overlap(m.areas[id], spec)
			switch {
			case res.AContainsB:
				result.Fully.Add(id)
			case res.Overlaps:
				result.Partially.Add(id)
			}
		}
	}
	return result, nil
}
