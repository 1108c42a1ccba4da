// Package address implements the hierarchical address format used to name
// locations and areas on a body model.
//
// # Text Format
//
// An address is an ordered region path followed by an optional, unordered
// modifier set:
//
//	region1, region2, ... | modifier1, modifier2, ...
//
// Each region token is either a bare base name ("finger") or an option
// followed by the base name ("index finger"). Regions are separated by ", ",
// the modifier section is introduced by " | " and modifiers are separated by
// ", ". All tokens are trimmed and lower-cased.
//
//	hand, index finger, distal phalanx | palmar, ulnar
//
// # Kinds
//
// The same structure is used for two purposes, tagged by [Kind]:
//   - Location: a point on the body (e.g. where an electrode sits)
//   - Area: a region of the body (e.g. a reachable percept area)
//
// # Overlap Algebra
//
// [Overlap] compares two addresses. Region paths overlap when they share a
// non-empty prefix; modifier sets overlap when the smaller one is a subset of
// the larger one. Containment is the asymmetric case where the first
// address is equal-or-broader in both dimensions.
package address
