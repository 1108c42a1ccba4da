package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/lhmcgann/estim-go/internal/testharness/loader"
	modelloader "github.com/lhmcgann/estim-go/pkg/loader"
	"github.com/lhmcgann/estim-go/pkg/manager"
)

// Engine executes scenarios.
type Engine struct {
	config   *EngineConfig
	handlers map[string]ActionHandler
	checkers map[string]ExpectChecker
	mu       sync.RWMutex
}

// New creates a new engine with default configuration.
func New() *Engine {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new engine with the given configuration. The
// registry actions and checkers are registered.
func NewWithConfig(config *EngineConfig) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	e := &Engine{
		config:   config,
		handlers: make(map[string]ActionHandler),
		checkers: make(map[string]ExpectChecker),
	}

	e.RegisterChecker(CheckerNameDefault, defaultChecker)
	e.RegisterChecker(KeyError, checkError)
	e.RegisterChecker(KeyFully, checkIDSet)
	e.RegisterChecker(KeyPartially, checkIDSet)

	e.RegisterHandler(ActionAddModel, e.handleAddModel)
	e.RegisterHandler(ActionSave, handleSave)
	e.RegisterHandler(ActionLocalize, handleLocalize)
	e.RegisterHandler(ActionRetrieve, handleRetrieve)
	e.RegisterHandler(ActionGlobalID, handleGlobalID)
	e.RegisterHandler(ActionCount, handleCount)
	e.RegisterHandler(ActionRestore, e.handleRestore)

	return e
}

// RegisterHandler registers an action handler.
func (e *Engine) RegisterHandler(action string, handler ActionHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[action] = handler
}

// RegisterChecker registers an expectation checker.
func (e *Engine) RegisterChecker(key string, checker ExpectChecker) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkers[key] = checker
}

// Run executes a single scenario on a fresh registry.
func (e *Engine) Run(ctx context.Context, tc *loader.TestCase) *TestResult {
	result := &TestResult{TestCase: tc}
	startTime := time.Now()
	defer func() { result.Duration = time.Since(startTime) }()

	if tc.Skip {
		result.Skipped = true
		result.SkipReason = tc.SkipReason
		if result.SkipReason == "" {
			result.SkipReason = "skipped by test definition"
		}
		return result
	}

	testCtx, cancel := context.WithTimeout(ctx, e.config.DefaultTimeout)
	defer cancel()

	state, err := e.newState(testCtx, tc.Models)
	if err != nil {
		result.Error = fmt.Errorf("model setup failed: %w", err)
		return result
	}
	if tc.File != "" {
		state.BaseDir = filepath.Dir(tc.File)
	}

	for i := range tc.Steps {
		if err := testCtx.Err(); err != nil {
			result.Error = err
			return result
		}

		stepResult := e.executeStep(testCtx, &tc.Steps[i], i, state)
		result.StepResults = append(result.StepResults, stepResult)
		if !stepResult.Passed {
			result.Error = stepResult.Error
			return result
		}
	}

	result.Passed = true
	return result
}

// newState builds a registry holding refs.
func (e *Engine) newState(ctx context.Context, refs []loader.ModelRef) (*ExecutionState, error) {
	registry := manager.New(e.config.ManagerOptions...)
	state := NewExecutionState(ctx, registry)
	for _, ref := range refs {
		key, err := addModel(registry, ref)
		if err != nil {
			return nil, err
		}
		state.Models = append(state.Models, loader.ModelRef{Key: key, Model: ref.Model})
	}
	return state, nil
}

func addModel(registry *manager.Manager, ref loader.ModelRef) (string, error) {
	tmpl, err := modelloader.Open(ref.Model)
	if err != nil {
		return "", err
	}
	model, err := tmpl.NewModel()
	if err != nil {
		return "", err
	}
	return registry.AddModel(model, ref.Key)
}

// executeStep executes a single step. A failed action is only a step
// failure when the step does not expect an error.
func (e *Engine) executeStep(ctx context.Context, step *loader.Step, index int, state *ExecutionState) *StepResult {
	result := &StepResult{
		Step:          step,
		StepIndex:     index,
		ExpectResults: make(map[string]*ExpectResult),
		Output:        make(map[string]any),
	}

	startTime := time.Now()
	defer func() { result.Duration = time.Since(startTime) }()

	e.mu.RLock()
	handler, exists := e.handlers[step.Action]
	e.mu.RUnlock()

	if !exists {
		result.Error = fmt.Errorf("unknown action: %s", step.Action)
		return result
	}

	state.Outputs = make(map[string]any)
	outputs, err := handler(ctx, step, state)
	if err != nil {
		if _, expectsError := step.Expect[KeyError]; !expectsError {
			result.Error = err
			return result
		}
		outputs = map[string]any{KeyError: err.Error()}
	} else if outputs == nil {
		outputs = make(map[string]any)
	}
	if _, ok := outputs[KeyError]; !ok {
		outputs[KeyError] = ""
	}

	for k, v := range outputs {
		state.Set(k, v)
		result.Output[k] = v
	}

	result.Passed = true
	for key, expected := range step.Expect {
		expectResult := e.checkExpectation(key, expected, state)
		result.ExpectResults[key] = expectResult
		if !expectResult.Passed {
			result.Passed = false
			result.Error = fmt.Errorf("expectation failed: %s - %s", key, expectResult.Message)
		}
	}

	return result
}

// checkExpectation checks a single expectation.
func (e *Engine) checkExpectation(key string, expected any, state *ExecutionState) *ExpectResult {
	e.mu.RLock()
	checker, exists := e.checkers[key]
	if !exists {
		checker = e.checkers[CheckerNameDefault]
	}
	e.mu.RUnlock()

	return checker(key, expected, state)
}

// RunSuite executes all scenarios in order.
func (e *Engine) RunSuite(ctx context.Context, name string, cases []*loader.TestCase) *SuiteResult {
	result := &SuiteResult{SuiteName: name}

	startTime := time.Now()
	defer func() { result.Duration = time.Since(startTime) }()

	for _, tc := range cases {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return result
		default:
		}

		testResult := e.Run(ctx, tc)
		result.Results = append(result.Results, testResult)

		switch {
		case testResult.Skipped:
			result.SkipCount++
		case testResult.Passed:
			result.PassCount++
		default:
			result.FailCount++
		}

		if e.config.OnTestComplete != nil {
			e.config.OnTestComplete(testResult)
		}

		if !testResult.Passed && !testResult.Skipped && e.config.StopOnFirstFailure {
			break
		}
	}

	return result
}
