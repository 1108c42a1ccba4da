// Package version provides model description format versions and the tool
// release version.
package version

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Current is the model description format implemented by this library.
const Current = "1.0"

// Release is the estim-go release version reported by the CLI.
const Release = "0.1.0"

// ErrIncompatible is returned when a description uses an unsupported major
// format version.
var ErrIncompatible = errors.New("incompatible format version")

// supported accepts every format with Current's major version.
var supported = mustConstraint("^" + Current)

func mustConstraint(c string) *semver.Constraints {
	sc, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return sc
}

// FormatVersion represents a parsed "major.minor" format version.
type FormatVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (FormatVersion, error) {
	if strings.Count(s, ".") != 1 {
		return FormatVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}
	v, err := semver.StrictNewVersion(s + ".0")
	if err != nil {
		return FormatVersion{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	if v.Major() > math.MaxUint16 || v.Minor() > math.MaxUint16 {
		return FormatVersion{}, fmt.Errorf("invalid version %q: component out of range", s)
	}
	return FormatVersion{Major: uint16(v.Major()), Minor: uint16(v.Minor())}, nil
}

// String returns the version as "major.minor".
func (v FormatVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v FormatVersion) Compatible(other FormatVersion) bool {
	return v.Major == other.Major
}

func (v FormatVersion) semver() *semver.Version {
	return semver.New(uint64(v.Major), uint64(v.Minor), 0, "", "")
}

// Check validates the format version a description declares. An empty
// string means Current. Newer minor versions are accepted; fields this
// library does not know are ignored by the decoder.
func Check(declared string) error {
	if declared == "" {
		return nil
	}
	v, err := Parse(declared)
	if err != nil {
		return err
	}
	if !supported.Check(v.semver()) {
		return fmt.Errorf("%w: %s (supported: %s)", ErrIncompatible, v, supported)
	}
	return nil
}
