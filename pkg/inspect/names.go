package inspect

import (
	"sort"

	"github.com/lhmcgann/estim-go/pkg/address"
)

// RegionNames returns every region token the tree accepts, sorted: each base
// name, and each "option base" pair.
func RegionNames(tree *ModelTree) []string {
	seen := make(map[string]struct{})
	var walk func(r RegionInfo)
	walk = func(r RegionInfo) {
		seen[r.Name] = struct{}{}
		for _, opt := range r.Options {
			seen[address.OptionedName{Option: opt, Name: r.Name}.String()] = struct{}{}
		}
		for _, c := range r.Subregions {
			walk(c)
		}
	}
	walk(tree.Root)
	return sortedKeys(seen)
}

// ModifierNames returns every modifier value used anywhere in the tree,
// sorted.
func ModifierNames(tree *ModelTree) []string {
	seen := make(map[string]struct{})
	var walk func(r RegionInfo)
	walk = func(r RegionInfo) {
		for _, axis := range r.Axes {
			for _, v := range axis.Values {
				seen[v] = struct{}{}
			}
		}
		for _, c := range r.Subregions {
			walk(c)
		}
	}
	walk(tree.Root)
	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
