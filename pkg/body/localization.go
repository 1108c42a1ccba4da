package body

import "sort"

// IDSet is a set of saved location or area IDs. The nil set reads as empty
// but cannot be written; use NewIDSet before calling Add.
type IDSet map[int]struct{}

// NewIDSet creates a set holding ids.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id.
func (s IDSet) Add(id int) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s IDSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Len returns the set size.
func (s IDSet) Len() int {
	return len(s)
}

// Sorted returns the IDs in ascending order.
func (s IDSet) Sorted() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Clone returns a copy of the set.
func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Union returns a new set holding the IDs of both s and o.
func (s IDSet) Union(o IDSet) IDSet {
	u := s.Clone()
	for id := range o {
		u[id] = struct{}{}
	}
	return u
}

// Localization lists the saved areas that contain a queried address.
//
// After merging results of several queries an ID may be in both sets: one
// sub-query was fully contained by the area and another only partially.
// Consumers decide how to treat such IDs.
type Localization struct {
	Fully     IDSet
	Partially IDSet
}

// NewLocalization returns an empty Localization.
func NewLocalization() Localization {
	return Localization{Fully: NewIDSet(), Partially: NewIDSet()}
}

// Merge returns the per-field union of l and o. Neither operand is modified.
func (l Localization) Merge(o Localization) Localization {
	return Localization{
		Fully:     l.Fully.Union(o.Fully),
		Partially: l.Partially.Union(o.Partially),
	}
}

// IsEmpty reports whether no area contains the query.
func (l Localization) IsEmpty() bool {
	return len(l.Fully) == 0 && len(l.Partially) == 0
}

// Contains reports whether id is in either set.
func (l Localization) Contains(id int) bool {
	return l.Fully.Has(id) || l.Partially.Has(id)
}
