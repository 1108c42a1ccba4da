// Package loader provides YAML scenario loading for the estim test harness.
package loader

import "fmt"

// TestCase is a single scenario loaded from YAML: models to register and
// steps to run against the registry.
type TestCase struct {
	// ID is the unique scenario identifier (e.g., "TC-SAVE-001").
	ID string `yaml:"id"`

	// Name is a human-readable name for the scenario.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description,omitempty"`

	// Models are registered, in order, before the first step.
	Models []ModelRef `yaml:"models"`

	// Steps are the actions to execute in order.
	Steps []Step `yaml:"steps"`

	// Tags for categorizing scenarios.
	Tags []string `yaml:"tags,omitempty"`

	// Skip marks the scenario as not runnable.
	Skip bool `yaml:"skip,omitempty"`

	// SkipReason explains why the scenario is skipped.
	SkipReason string `yaml:"skip_reason,omitempty"`

	// File is the path the scenario was loaded from, if any.
	File string `yaml:"-"`
}

// ModelRef names a model to register.
type ModelRef struct {
	// Key is the registry key. Defaults to the model name.
	Key string `yaml:"key,omitempty"`

	// Model is a description file (relative to the scenario file) or
	// "builtin:<name>".
	Model string `yaml:"model"`
}

// Step represents a single action in a scenario.
type Step struct {
	// Action is the action to perform (e.g., "save", "localize").
	Action string `yaml:"action"`

	// Params are parameters for the action.
	Params map[string]any `yaml:"params,omitempty"`

	// Expect defines expected outcomes after the action.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Description explains what this step does.
	Description string `yaml:"description,omitempty"`
}

// LoadError provides details about a scenario loading error.
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
	if e.File != "" {
		if e.Line > 0 {
			msg = fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
		} else {
			msg = fmt.Sprintf("%s: %s", e.File, e.Message)
		}
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
