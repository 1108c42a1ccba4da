package engine

import (
	"fmt"
	"slices"
	"strings"
)

// CheckerNameDefault is the checker used for keys with no registered checker.
const CheckerNameDefault = "_default"

// defaultChecker compares the output under key with the expected value by
// their printed form. The expected value "present" only requires the key.
func defaultChecker(key string, expected any, state *ExecutionState) *ExpectResult {
	actual, exists := state.Get(key)
	if !exists {
		return &ExpectResult{
			Key:      key,
			Expected: expected,
			Passed:   false,
			Message:  fmt.Sprintf("key %q not found in outputs", key),
		}
	}

	if expStr, ok := expected.(string); ok && expStr == "present" {
		return &ExpectResult{
			Key:      key,
			Expected: expected,
			Actual:   actual,
			Passed:   true,
			Message:  fmt.Sprintf("%s = %v", key, actual),
		}
	}

	passed := fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
	result := &ExpectResult{
		Key:      key,
		Expected: expected,
		Actual:   actual,
		Passed:   passed,
	}
	if passed {
		result.Message = fmt.Sprintf("%s = %v", key, expected)
	} else {
		result.Message = fmt.Sprintf("expected %v, got %v", expected, actual)
	}
	return result
}

// checkError matches the action's error text. The expected value is a
// case-insensitive substring; "none" or an empty string expects success.
func checkError(key string, expected any, state *ExecutionState) *ExpectResult {
	actual, _ := state.Get(key)
	got, _ := actual.(string)
	want := strings.ToLower(strings.TrimSpace(fmt.Sprint(expected)))

	result := &ExpectResult{Key: key, Expected: expected, Actual: got}
	switch {
	case want == "" || want == "none":
		result.Passed = got == ""
		if result.Passed {
			result.Message = "no error"
		} else {
			result.Message = "unexpected error: " + got
		}
	case got == "":
		result.Message = fmt.Sprintf("expected error containing %q, got none", want)
	default:
		result.Passed = strings.Contains(strings.ToLower(got), want)
		result.Message = fmt.Sprintf("error %q contains %q = %v", got, want, result.Passed)
	}
	return result
}

// checkIDSet compares ID lists ignoring order.
func checkIDSet(key string, expected any, state *ExecutionState) *ExpectResult {
	actual, exists := state.Get(key)
	result := &ExpectResult{Key: key, Expected: expected, Actual: actual}
	if !exists {
		result.Message = fmt.Sprintf("key %q not found in outputs", key)
		return result
	}

	want, ok := toIntSlice(expected)
	if !ok {
		result.Message = fmt.Sprintf("expected value is not a list of IDs: %v", expected)
		return result
	}
	got, ok := toIntSlice(actual)
	if !ok {
		result.Message = fmt.Sprintf("output is not a list of IDs: %v", actual)
		return result
	}
	slices.Sort(want)
	slices.Sort(got)

	result.Passed = slices.Equal(want, got)
	if result.Passed {
		result.Message = fmt.Sprintf("%s = %v", key, got)
	} else {
		result.Message = fmt.Sprintf("expected %v, got %v", want, got)
	}
	return result
}

func toIntSlice(v any) ([]int, bool) {
	switch list := v.(type) {
	case nil:
		return []int{}, true
	case []int:
		return slices.Clone(list), true
	case []any:
		out := make([]int, 0, len(list))
		for _, item := range list {
			n, ok := toInt(item)
			if !ok {
				return nil, false
			}
			out = append(out, n)
		}
		return out, true
	default:
		return nil, false
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
