package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ModelFile is the on-disk form of a body model.
type ModelFile struct {
	// Format is the description format version. Empty means current.
	Format string `yaml:"format,omitempty" toml:"format"`

	// Name is the model name. Defaults to the root region's name.
	Name string `yaml:"name,omitempty" toml:"name"`

	// RequiredAxes must be declared (possibly empty) on every region.
	RequiredAxes []string `yaml:"required_axes,omitempty" toml:"required_axes"`

	// Root is the top of the region tree.
	Root RegionSpec `yaml:"root" toml:"root"`
}

// RegionSpec describes one region and its subtree.
type RegionSpec struct {
	Name       string              `yaml:"name" toml:"name"`
	Options    []string            `yaml:"options,omitempty" toml:"options"`
	Modifiers  map[string][]string `yaml:"modifiers,omitempty" toml:"modifiers"`
	Subregions []RegionSpec        `yaml:"subregions,omitempty" toml:"subregions"`

	line int
}

// UnmarshalYAML records the line the region starts on for error reporting.
func (r *RegionSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain RegionSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = RegionSpec(p)
	r.line = node.Line
	return nil
}

// Line returns the source line of the region, or 0 if unknown.
func (r *RegionSpec) Line() int {
	return r.line
}

// SessionFile is the on-disk form of a session.
type SessionFile struct {
	// State is an optional registry state file, relative to the session file.
	State string `yaml:"state,omitempty"`

	// Models are registered in order.
	Models []SessionModel `yaml:"models"`
}

// SessionModel is one model entry of a session file.
type SessionModel struct {
	// Key is the registry key. Defaults to the model name.
	Key string `yaml:"key,omitempty"`

	// File is the model description, relative to the session file.
	File string `yaml:"file"`

	// Locations and Areas are saved after the model is registered.
	Locations []string `yaml:"locations,omitempty"`
	Areas     []string `yaml:"areas,omitempty"`
}

// LoadError provides details about a model or session loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Line is the line number where the error occurred (0 if unknown).
	Line int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, msg)
	case e.File != "":
		return e.File + ": " + msg
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
