package body

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lhmcgann/estim-go/pkg/address"
)

// Region errors.
var (
	ErrMissingAxis      = errors.New("region missing required modifier axis")
	ErrDuplicateRegion  = errors.New("duplicate subregion")
	ErrInvalidRegion    = errors.New("invalid region")
	ErrUnresolvedRegion = errors.New("unresolved region")
)

// Region is a node in a body model tree. Build regions with NewRegion; the
// zero value is an unnamed leaf that accepts subregions but resolves nothing.
type Region struct {
	name string

	// parentOptions accumulates the options of every ancestor.
	parentOptions []string

	options   []string
	modifiers map[string]map[string]struct{}

	subregions map[string]*Region

	// parent is a back-link for ancestor traversal only. The tree is owned
	// top-down through subregions.
	parent *Region

	savedLocationIDs IDSet
	savedAreaIDs     IDSet
}

// NewRegion creates a detached region. modifiers maps axis name to the values
// valid on that axis; it must contain an entry for every axis in
// requiredAxes. Names, options, axes and values are lower-cased.
func NewRegion(name string, options []string, modifiers map[string][]string, requiredAxes []string) (*Region, error) {
	name = normalize(name)
	if name == "" || strings.ContainsAny(name, " ,|") {
		return nil, fmt.Errorf("%w: name %q", ErrInvalidRegion, name)
	}

	r := &Region{
		name:             name,
		modifiers:        make(map[string]map[string]struct{}, len(modifiers)),
		subregions:       make(map[string]*Region),
		savedLocationIDs: NewIDSet(),
		savedAreaIDs:     NewIDSet(),
	}

	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		opt = normalize(opt)
		if opt == "" || strings.ContainsAny(opt, " ,|") {
			return nil, fmt.Errorf("%w: %s: option %q", ErrInvalidRegion, name, opt)
		}
		if !seen[opt] {
			seen[opt] = true
			r.options = append(r.options, opt)
		}
	}

	for axis, values := range modifiers {
		axis = normalize(axis)
		set := r.modifiers[axis]
		if set == nil {
			set = make(map[string]struct{}, len(values))
			r.modifiers[axis] = set
		}
		for _, v := range values {
			set[normalize(v)] = struct{}{}
		}
	}

	for _, axis := range requiredAxes {
		if _, ok := r.modifiers[normalize(axis)]; !ok {
			return nil, fmt.Errorf("%w: %s: %s", ErrMissingAxis, name, axis)
		}
	}

	return r, nil
}

// Name returns the base name.
func (r *Region) Name() string {
	return r.name
}

// Options returns the region's own naming variants.
func (r *Region) Options() []string {
	return append([]string(nil), r.options...)
}

// ParentOptions returns the options declared by all ancestors.
func (r *Region) ParentOptions() []string {
	return append([]string(nil), r.parentOptions...)
}

// HasOption reports whether opt is one of the region's own options.
func (r *Region) HasOption(opt string) bool {
	for _, o := range r.options {
		if o == opt {
			return true
		}
	}
	return false
}

// Names returns every optioned name this region answers to at the root of a
// path: one per option, or the bare base name when there are none.
func (r *Region) Names() []address.OptionedName {
	if len(r.options) == 0 {
		return []address.OptionedName{{Name: r.name}}
	}
	names := make([]address.OptionedName, 0, len(r.options))
	for _, opt := range r.options {
		names = append(names, address.OptionedName{Option: opt, Name: r.name})
	}
	return names
}

// Axes returns the modifier axis names in sorted order.
func (r *Region) Axes() []string {
	axes := make([]string, 0, len(r.modifiers))
	for axis := range r.modifiers {
		axes = append(axes, axis)
	}
	sort.Strings(axes)
	return axes
}

// AxisValues returns the sorted values of one axis, or nil if the axis is
// not declared.
func (r *Region) AxisValues(axis string) []string {
	set, ok := r.modifiers[normalize(axis)]
	if !ok {
		return nil
	}
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Parent returns the parent region, or nil for a root.
func (r *Region) Parent() *Region {
	return r.parent
}

// Subregion returns the child with the given base name.
func (r *Region) Subregion(name string) (*Region, bool) {
	child, ok := r.subregions[normalize(name)]
	return child, ok
}

// Subregions returns the children sorted by name.
func (r *Region) Subregions() []*Region {
	children := make([]*Region, 0, len(r.subregions))
	for _, child := range r.subregions {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].name < children[j].name })
	return children
}

// AddSubregion attaches child under r. The child must be detached.
func (r *Region) AddSubregion(child *Region) error {
	if child == nil {
		return fmt.Errorf("%w: nil subregion", ErrInvalidRegion)
	}
	if child.parent != nil {
		return fmt.Errorf("%w: %s already has a parent", ErrInvalidRegion, child.name)
	}
	if _, exists := r.subregions[child.name]; exists {
		return fmt.Errorf("%w: %s under %s", ErrDuplicateRegion, child.name, r.name)
	}

	if r.subregions == nil {
		r.subregions = make(map[string]*Region)
	}
	r.subregions[child.name] = child
	child.parent = r
	child.inheritOptions()
	return nil
}

// inheritOptions recomputes parentOptions for r's subtree from r.parent.
func (r *Region) inheritOptions() {
	r.parentOptions = nil
	if r.parent != nil {
		r.parentOptions = append(r.parent.ParentOptions(), r.parent.options...)
	}
	for _, child := range r.subregions {
		child.inheritOptions()
	}
}

// Path returns the option-less base name path from the root to r.
func (r *Region) Path() []string {
	var path []string
	for n := r; n != nil; n = n.parent {
		path = append(path, n.name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Depth returns the number of ancestors of r.
func (r *Region) Depth() int {
	d := 0
	for n := r.parent; n != nil; n = n.parent {
		d++
	}
	return d
}

// Walk calls fn for r and every descendant in depth-first, name order.
// Returning false from fn skips that region's subtree.
func (r *Region) Walk(fn func(*Region) bool) {
	if !fn(r) {
		return
	}
	for _, child := range r.Subregions() {
		child.Walk(fn)
	}
}

// SavedLocationIDs returns the IDs of locations saved exactly at r.
func (r *Region) SavedLocationIDs() []int {
	return r.savedLocationIDs.Sorted()
}

// SavedAreaIDs returns the IDs of areas saved exactly at r.
func (r *Region) SavedAreaIDs() []int {
	return r.savedAreaIDs.Sorted()
}

func (r *Region) savedIDs(kind address.Kind) IDSet {
	if kind == address.KindArea {
		if r.savedAreaIDs == nil {
			r.savedAreaIDs = NewIDSet()
		}
		return r.savedAreaIDs
	}
	if r.savedLocationIDs == nil {
		r.savedLocationIDs = NewIDSet()
	}
	return r.savedLocationIDs
}

// Resolve walks path starting at r. The first element must match one of r's
// own names (see Names). Every following element selects a subregion by base
// name; its option, if given, must be declared by that subregion.
func (r *Region) Resolve(path []address.OptionedName) (*Region, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrUnresolvedRegion)
	}

	if !r.matchesSelf(path[0]) {
		return nil, fmt.Errorf("%w: %q is not %s", ErrUnresolvedRegion, path[0].String(), r.name)
	}

	current := r
	for _, elem := range path[1:] {
		child, ok := current.subregions[elem.Name]
		if !ok {
			return nil, fmt.Errorf("%w: no %q under %s", ErrUnresolvedRegion, elem.Name, current.name)
		}
		if elem.Option != "" && !child.HasOption(elem.Option) {
			return nil, fmt.Errorf("%w: %s has no option %q", ErrUnresolvedRegion, child.name, elem.Option)
		}
		current = child
	}
	return current, nil
}

func (r *Region) matchesSelf(n address.OptionedName) bool {
	for _, name := range r.Names() {
		if name == n {
			return true
		}
	}
	return false
}

// DeepCopy copies r and its whole subtree. The copy's root is attached to
// parent (nil for a detached tree); saved-ID sets start empty.
func (r *Region) DeepCopy(parent *Region) *Region {
	c := &Region{
		name:             r.name,
		options:          append([]string(nil), r.options...),
		modifiers:        make(map[string]map[string]struct{}, len(r.modifiers)),
		subregions:       make(map[string]*Region, len(r.subregions)),
		parent:           parent,
		savedLocationIDs: NewIDSet(),
		savedAreaIDs:     NewIDSet(),
	}
	for axis, values := range r.modifiers {
		set := make(map[string]struct{}, len(values))
		for v := range values {
			set[v] = struct{}{}
		}
		c.modifiers[axis] = set
	}
	if parent != nil {
		c.parentOptions = append(parent.ParentOptions(), parent.options...)
	}
	for name, child := range r.subregions {
		c.subregions[name] = child.DeepCopy(c)
	}
	return c
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
