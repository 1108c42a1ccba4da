package address

import "sort"

// OverlapResult is the outcome of comparing two addresses with Overlap.
type OverlapResult struct {
	// Overlaps is true when both the region paths and the modifier sets overlap.
	Overlaps bool

	// Spec is the overlapping address. Only set when Overlaps is true.
	Spec Spec

	// AContainsB is true when the first address is equal-or-broader than the
	// second in both dimensions.
	AContainsB bool
}

// RegionPrefixOverlap returns the length of the shared region path prefix of
// a and b. The paths overlap iff the result is greater than zero.
func RegionPrefixOverlap(a, b Spec) int {
	n := 0
	for n < len(a.regions) && n < len(b.regions) && a.regions[n] == b.regions[n] {
		n++
	}
	return n
}

// ModifierOverlap compares the modifier sets of a and b. They overlap iff
// every modifier of the smaller set is in the larger one. shared is the
// sorted intersection.
func ModifierOverlap(a, b Spec) (shared []string, ok bool) {
	short, long := a.modifiers, b.modifiers
	if len(short) > len(long) {
		short, long = long, short
	}

	ok = true
	for m := range short {
		if _, in := long[m]; in {
			shared = append(shared, m)
		} else {
			ok = false
		}
	}
	sort.Strings(shared)
	return shared, ok
}

// Overlap compares a and b.
//
// AContainsB holds iff a's region path is a prefix of (or equal to) b's and
// a's modifiers are a subset of b's. When the addresses overlap, the result
// Spec takes the longer region path (a's on a tie) and the union of both
// modifier sets, tagged with b's kind.
func Overlap(a, b Spec) OverlapResult {
	shared := RegionPrefixOverlap(a, b)
	_, modsOverlap := ModifierOverlap(a, b)

	res := OverlapResult{
		Overlaps:   shared > 0 && modsOverlap,
		AContainsB: shared == len(a.regions) && len(a.regions) <= len(b.regions) && isSubset(a.modifiers, b.modifiers),
	}
	if !res.Overlaps {
		return res
	}

	regions := a.regions
	if len(b.regions) > len(a.regions) {
		regions = b.regions
	}
	union := make(map[string]struct{}, len(a.modifiers)+len(b.modifiers))
	for m := range a.modifiers {
		union[m] = struct{}{}
	}
	for m := range b.modifiers {
		union[m] = struct{}{}
	}

	res.Spec = Spec{
		kind:      b.kind,
		regions:   append([]OptionedName(nil), regions...),
		modifiers: union,
	}
	return res
}

// Contains reports whether a is equal-or-broader than b.
func Contains(a, b Spec) bool {
	return Overlap(a, b).AContainsB
}

func isSubset(sub, super map[string]struct{}) bool {
	if len(sub) > len(super) {
		return false
	}
	for m := range sub {
		if _, ok := super[m]; !ok {
			return false
		}
	}
	return true
}
