package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	modelloader "github.com/lhmcgann/estim-go/pkg/loader"
)

// ParseTestCase parses a scenario from YAML bytes. Relative model paths are
// resolved against baseDir.
func ParseTestCase(data []byte, baseDir string) (*TestCase, error) {
	var tc TestCase
	if err := yaml.Unmarshal(data, &tc); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	// Validate required fields
	if tc.ID == "" {
		return nil, &LoadError{
			Message: "test case ID is required",
		}
	}
	if len(tc.Models) == 0 {
		return nil, &LoadError{
			Message: "test case must register at least one model",
		}
	}
	if len(tc.Steps) == 0 {
		return nil, &LoadError{
			Message: "test case must have at least one step",
		}
	}

	for i := range tc.Models {
		ref := &tc.Models[i]
		if ref.Model == "" {
			return nil, &LoadError{
				Message: fmt.Sprintf("model %d: model is required", i),
			}
		}
		ref.Model = ResolveModel(ref.Model, baseDir)
	}
	for i, step := range tc.Steps {
		if step.Action == "" {
			return nil, &LoadError{
				Message: fmt.Sprintf("step %d: action is required", i+1),
			}
		}
	}

	return &tc, nil
}

// ResolveModel joins a relative model file reference onto baseDir.
// Builtin references and absolute paths are returned unchanged.
func ResolveModel(ref, baseDir string) string {
	if strings.HasPrefix(ref, modelloader.BuiltinPrefix) || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(baseDir, ref)
}

// LoadTestCase loads a scenario from a file.
func LoadTestCase(path string) (*TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	tc, err := ParseTestCase(data, filepath.Dir(path))
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{
			File:    path,
			Message: err.Error(),
		}
	}
	tc.File = path

	return tc, nil
}

// LoadDirectory loads all scenarios from a directory, in file name order.
// Only files with .yaml or .yml extensions are loaded.
func LoadDirectory(dir string) ([]*TestCase, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var cases []*TestCase
	for _, name := range names {
		tc, err := LoadTestCase(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}

	return cases, nil
}

// LoadPaths loads scenarios from files and directories.
func LoadPaths(paths []string) ([]*TestCase, error) {
	var cases []*TestCase
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, &LoadError{
				File:    path,
				Message: "failed to stat path",
				Cause:   err,
			}
		}

		if info.IsDir() {
			dirCases, err := LoadDirectory(path)
			if err != nil {
				return nil, err
			}
			cases = append(cases, dirCases...)
			continue
		}

		tc, err := LoadTestCase(path)
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

// FilterTestCases returns the scenarios whose ID or one of whose tags
// matches pattern. An empty pattern matches everything.
func FilterTestCases(cases []*TestCase, pattern string) ([]*TestCase, error) {
	if pattern == "" {
		return cases, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid test pattern: %w", err)
	}

	var filtered []*TestCase
	for _, tc := range cases {
		if re.MatchString(tc.ID) || matchesAny(re, tc.Tags) {
			filtered = append(filtered, tc)
		}
	}
	return filtered, nil
}

func matchesAny(re *regexp.Regexp, values []string) bool {
	for _, v := range values {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}
