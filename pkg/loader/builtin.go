package loader

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// BuiltinPrefix marks a model reference that names an embedded model.
const BuiltinPrefix = "builtin:"

//go:embed models/*.yaml
var builtinFS embed.FS

var (
	builtinMu    sync.RWMutex
	builtinCache = make(map[string]*Template)
)

// Builtin loads an embedded model by name (e.g. "hand"). Templates are parsed
// once and shared; models instantiated from them never share a tree.
func Builtin(name string) (*Template, error) {
	builtinMu.RLock()
	if t, ok := builtinCache[name]; ok {
		builtinMu.RUnlock()
		return t, nil
	}
	builtinMu.RUnlock()

	file := "models/" + name + ".yaml"
	data, err := builtinFS.ReadFile(file)
	if err != nil {
		return nil, &LoadError{
			File:    BuiltinPrefix + name,
			Message: "no such builtin model",
			Cause:   err,
		}
	}

	t, err := ParseModel(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = BuiltinPrefix + name
		}
		return nil, err
	}

	builtinMu.Lock()
	builtinCache[name] = t
	builtinMu.Unlock()

	return t, nil
}

// BuiltinNames returns the names of all embedded models, sorted.
func BuiltinNames() ([]string, error) {
	entries, err := builtinFS.ReadDir("models")
	if err != nil {
		return nil, fmt.Errorf("reading builtin models: %w", err)
	}

	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
