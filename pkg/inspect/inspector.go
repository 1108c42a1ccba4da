package inspect

import (
	"fmt"

	"github.com/lhmcgann/estim-go/pkg/address"
	"github.com/lhmcgann/estim-go/pkg/body"
	"github.com/lhmcgann/estim-go/pkg/manager"
)

// Inspector provides read-only inspection of a model registry.
type Inspector struct {
	registry *manager.Manager
}

// NewInspector creates a new Inspector for the given registry.
func NewInspector(registry *manager.Manager) *Inspector {
	return &Inspector{registry: registry}
}

// Registry returns the underlying registry.
func (i *Inspector) Registry() *manager.Manager {
	return i.registry
}

// ModelTree represents a model's region tree for display.
type ModelTree struct {
	Key  string
	Name string
	Root RegionInfo
}

// RegionInfo represents one region for display. Saved IDs are global.
type RegionInfo struct {
	Name       string
	Options    []string
	Axes       []AxisInfo
	Locations  []int
	Areas      []int
	Subregions []RegionInfo
}

// AxisInfo is one modifier axis and its values.
type AxisInfo struct {
	Name   string
	Values []string
}

// SavedRow is one saved address for display.
type SavedRow struct {
	GlobalID int
	LocalID  int
	Address  string
}

// Match is one area reported by a localization query.
type Match struct {
	GlobalID int
	Address  string
	Fully    bool
}

// InspectModel returns the full region tree of the model registered under key.
func (i *Inspector) InspectModel(key string) (*ModelTree, error) {
	model, err := i.registry.Model(key)
	if err != nil {
		return nil, err
	}
	return &ModelTree{
		Key:  key,
		Name: model.Name(),
		Root: i.inspectRegion(key, model.Root()),
	}, nil
}

// InspectRegion returns the subtree of the region spec resolves to.
func (i *Inspector) InspectRegion(key string, spec address.Spec) (*RegionInfo, error) {
	model, err := i.registry.Model(key)
	if err != nil {
		return nil, err
	}
	region, err := model.Resolve(spec)
	if err != nil {
		return nil, err
	}
	info := i.inspectRegion(key, region)
	return &info, nil
}

func (i *Inspector) inspectRegion(key string, r *body.Region) RegionInfo {
	info := RegionInfo{
		Name:      r.Name(),
		Options:   r.Options(),
		Locations: i.globals(key, r.SavedLocationIDs(), address.KindLocation),
		Areas:     i.globals(key, r.SavedAreaIDs(), address.KindArea),
	}
	for _, axis := range r.Axes() {
		info.Axes = append(info.Axes, AxisInfo{Name: axis, Values: r.AxisValues(axis)})
	}
	for _, child := range r.Subregions() {
		info.Subregions = append(info.Subregions, i.inspectRegion(key, child))
	}
	return info
}

func (i *Inspector) globals(key string, locals []int, kind address.Kind) []int {
	var out []int
	for _, id := range locals {
		if g, err := i.registry.GlobalID(key, id, kind); err == nil {
			out = append(out, g)
		}
	}
	return out
}

// Saved lists the addresses of kind saved in the model registered under key,
// ordered by global ID.
func (i *Inspector) Saved(key string, kind address.Kind) ([]SavedRow, error) {
	state := i.registry.Snapshot()
	ms, ok := state.Model(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", manager.ErrModelNotFound, key)
	}

	list := ms.Locations
	if kind == address.KindArea {
		list = ms.Areas
	}
	rows := make([]SavedRow, 0, len(list))
	for _, a := range list {
		rows = append(rows, SavedRow{GlobalID: a.GlobalID, LocalID: a.LocalID, Address: a.Address})
	}
	return rows, nil
}

// Localize runs a localization query and pairs each reported global ID with
// its area address. Fully containing areas come first, each group ordered by
// ID; an area in both groups is listed in both.
func (i *Inspector) Localize(key string, specs ...address.Spec) ([]Match, error) {
	res, err := i.registry.LocalizeAll(key, specs...)
	if err != nil {
		return nil, err
	}

	var matches []Match
	add := func(ids body.IDSet, fully bool) error {
		for _, id := range ids.Sorted() {
			_, spec, err := i.registry.Retrieve(id, address.KindArea)
			if err != nil {
				return err
			}
			matches = append(matches, Match{GlobalID: id, Address: spec.String(), Fully: fully})
		}
		return nil
	}
	if err := add(res.Fully, true); err != nil {
		return nil, err
	}
	if err := add(res.Partially, false); err != nil {
		return nil, err
	}
	return matches, nil
}
