// Package inspect provides read-only views of a model registry for display.
//
// The inspect package offers:
//   - Parsing query targets (e.g., "left: hand, index finger | palmar")
//   - Collecting region trees and saved addresses with their global IDs
//   - Formatting output for display
package inspect

import (
	"errors"
	"strings"

	"github.com/lhmcgann/estim-go/pkg/address"
)

// Target errors.
var (
	ErrEmptyTarget   = errors.New("empty target")
	ErrInvalidTarget = errors.New("invalid target format")
)

// KeySeparator separates an optional model key from the address.
const KeySeparator = ":"

// Target is a parsed query target.
// Format: [modelKey:] address
type Target struct {
	// ModelKey is the model to query (empty for the current model).
	ModelKey string

	// Address is the address text after the key.
	Address string

	// Raw stores the original input string.
	Raw string
}

// ParseTarget parses a query target.
//
// Supported formats:
//   - "hand, finger | palmar" - address in the current model
//   - "left: hand, finger | palmar" - address in model "left"
func ParseTarget(input string) (*Target, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyTarget
	}

	t := &Target{Raw: input}
	key, rest, found := strings.Cut(input, KeySeparator)
	if found {
		t.ModelKey = strings.TrimSpace(key)
		if t.ModelKey == "" || strings.ContainsAny(t.ModelKey, " ,|") {
			return nil, ErrInvalidTarget
		}
		input = rest
	}
	if strings.Contains(input, KeySeparator) {
		return nil, ErrInvalidTarget
	}

	t.Address = strings.TrimSpace(input)
	if t.Address == "" {
		return nil, ErrEmptyTarget
	}
	return t, nil
}

// Spec parses the target's address as kind.
func (t *Target) Spec(kind address.Kind) (address.Spec, error) {
	return address.Parse(kind, t.Address)
}

// Key returns the target's model key, or fallback when none was given.
func (t *Target) Key(fallback string) string {
	if t.ModelKey == "" {
		return fallback
	}
	return t.ModelKey
}

// String returns the target in canonical form.
func (t *Target) String() string {
	if t.ModelKey == "" {
		return t.Address
	}
	return t.ModelKey + KeySeparator + " " + t.Address
}
