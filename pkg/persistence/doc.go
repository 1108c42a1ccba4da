// Package persistence stores the saved-address state of a model registry.
//
// The state file is JSON. It records, per model key, every saved location and
// area with its model-local ID, its registry-wide global ID and its address
// text. Region trees are not persisted; they are reloaded from their model
// descriptions and the saves are replayed on top of them.
package persistence
