// Package body implements the body model: a tree of named regions with
// per-axis modifier values, and a registry of saved locations and areas.
//
// # Region Hierarchy
//
// A body model is a tree of Regions:
//
//	hand [left|right]
//	└── finger [thumb|index|middle|ring|little]
//	    └── phalanx [proximal|middle|distal]
//
// Each region has a base name, optional naming variants ("options"), and a
// set of modifier axes. Every region declares a value set for every required
// axis, e.g.
//
//	palmar_dorsal: {palmar, dorsal}
//	ulnar_radial:  {ulnar, radial}
//
// An address resolves to a region when its path walks the tree from the
// root. Its modifiers are valid when each one can be assigned to a distinct
// axis of that region whose value set contains it.
//
// # Saved Locations and Areas
//
// A [Model] owns a private copy of a template tree and two registries. Saving
// an address resolves it, validates its modifiers and deduplicates it against
// the addresses already saved on the same region. Each saved ID is also
// recorded on its region so that containment queries can walk the tree.
//
// # Localization
//
// [Model.FindContainingAreas] walks from the queried region up to the root and
// classifies every saved area on the way as fully or partially containing the
// query.
//
// Nothing in this package is safe for concurrent use. Concurrent queries
// against a model that is not being modified are fine.
package body
