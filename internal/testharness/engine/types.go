// Package engine runs loaded scenarios against a model registry.
package engine

import (
	"context"
	"time"

	"github.com/lhmcgann/estim-go/internal/testharness/loader"
	"github.com/lhmcgann/estim-go/pkg/manager"
)

// TestResult represents the outcome of a single scenario.
type TestResult struct {
	// TestCase is the scenario that was executed.
	TestCase *loader.TestCase

	// Passed indicates if all steps passed.
	Passed bool

	// Error is the error that caused failure, if any.
	Error error

	// StepResults contains results for each executed step.
	StepResults []*StepResult

	// Duration is how long the scenario took.
	Duration time.Duration

	// Skipped indicates if the scenario was skipped.
	Skipped bool

	// SkipReason explains why the scenario was skipped.
	SkipReason string
}

// StepResult represents the outcome of a single step.
type StepResult struct {
	// Step is the step that was executed.
	Step *loader.Step

	// StepIndex is the index of this step (0-based).
	StepIndex int

	// Passed indicates if the step passed.
	Passed bool

	// Error is the error that caused failure, if any.
	Error error

	// ExpectResults maps expectation keys to their results.
	ExpectResults map[string]*ExpectResult

	// Duration is how long the step took.
	Duration time.Duration

	// Output contains the values the action produced.
	Output map[string]any
}

// ExpectResult represents the result of checking an expectation.
type ExpectResult struct {
	Key      string
	Expected any
	Actual   any
	Passed   bool
	Message  string
}

// SuiteResult represents the outcome of running several scenarios.
type SuiteResult struct {
	SuiteName string
	Results   []*TestResult
	PassCount int
	FailCount int
	SkipCount int
	Duration  time.Duration
}

// ActionHandler processes a step action. It returns outputs for the step's
// expectations, and an error if the action failed.
type ActionHandler func(ctx context.Context, step *loader.Step, state *ExecutionState) (map[string]any, error)

// ExpectChecker checks an expectation against the step outputs.
type ExpectChecker func(key string, expected any, state *ExecutionState) *ExpectResult

// ExecutionState holds state during scenario execution.
type ExecutionState struct {
	// Outputs of the current step.
	Outputs map[string]any

	// Registry is the registry under test. Actions may replace it.
	Registry *manager.Manager

	// Models are the scenario's model references, with resolved keys.
	Models []loader.ModelRef

	// BaseDir is the directory relative model files are resolved against.
	BaseDir string

	// Context for cancellation.
	Context context.Context
}

// NewExecutionState creates a new execution state.
func NewExecutionState(ctx context.Context, registry *manager.Manager) *ExecutionState {
	return &ExecutionState{
		Outputs:  make(map[string]any),
		Registry: registry,
		Context:  ctx,
	}
}

// Get retrieves a value from the outputs.
func (s *ExecutionState) Get(key string) (any, bool) {
	v, ok := s.Outputs[key]
	return v, ok
}

// Set stores a value in the outputs.
func (s *ExecutionState) Set(key string, value any) {
	s.Outputs[key] = value
}

// DefaultModel returns the key of the first registered model.
func (s *ExecutionState) DefaultModel() string {
	if len(s.Models) == 0 {
		return ""
	}
	return s.Models[0].Key
}

// EngineConfig configures the engine.
type EngineConfig struct {
	// DefaultTimeout bounds a single scenario.
	DefaultTimeout time.Duration

	// StopOnFirstFailure stops a suite after the first failed scenario.
	StopOnFirstFailure bool

	// ManagerOptions are applied to every registry the engine creates.
	ManagerOptions []manager.Option

	// OnTestComplete is called after each scenario of a suite.
	OnTestComplete func(*TestResult)
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		DefaultTimeout: 10 * time.Second,
	}
}
