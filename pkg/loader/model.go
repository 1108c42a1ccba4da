package loader

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/lhmcgann/estim-go/pkg/body"
	"github.com/lhmcgann/estim-go/pkg/version"
)

// Template is a loaded region tree ready to instantiate models from.
type Template struct {
	// Name is the model name.
	Name string

	// Root is the template tree. Models deep-copy it.
	Root *body.Region
}

// NewModel instantiates a model from the template.
func (t *Template) NewModel(opts ...body.ModelOption) (*body.Model, error) {
	return body.NewModel(t.Name, t.Root, opts...)
}

// ParseModel parses a model description from YAML or JSON bytes and builds
// its region tree.
func ParseModel(data []byte) (*Template, error) {
	var mf ModelFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}
	return mf.Build()
}

// ParseModelTOML parses a model description from TOML bytes. The keys are
// the same as in YAML; subregions are arrays of tables.
func ParseModelTOML(data []byte) (*Template, error) {
	var mf ModelFile
	if _, err := toml.Decode(string(data), &mf); err != nil {
		le := &LoadError{
			Message: "failed to parse TOML",
			Cause:   err,
		}
		var perr toml.ParseError
		if errors.As(err, &perr) {
			le.Line = perr.Position.Line
		}
		return nil, le
	}
	return mf.Build()
}

// LoadModel loads a model description from a file. Files ending in .toml
// are parsed as TOML, everything else as YAML.
func LoadModel(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	parse := ParseModel
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		parse = ParseModelTOML
	}
	t, err := parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{
			File:    path,
			Message: err.Error(),
		}
	}
	return t, nil
}

// Open loads a model by reference: "builtin:<name>" names an embedded
// model, anything else is a file path.
func Open(ref string) (*Template, error) {
	if name, ok := strings.CutPrefix(ref, BuiltinPrefix); ok {
		return Builtin(name)
	}
	return LoadModel(ref)
}

// LoadDirectory loads every model description in dir.
// Only files with .yaml, .yml, .json or .toml extensions are loaded, in name
// order.
func LoadDirectory(dir string) ([]*Template, error) {
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
		if entry.IsDir() || !isModelFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var templates []*Template
	for _, name := range names {
		t, err := LoadModel(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func isModelFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json", ".toml":
		return true
	}
	return false
}

// Build validates the description and builds its region tree.
func (mf *ModelFile) Build() (*Template, error) {
	if err := version.Check(mf.Format); err != nil {
		return nil, &LoadError{
			Message: "unsupported format",
			Cause:   err,
		}
	}
	if mf.Root.Name == "" {
		return nil, &LoadError{
			Line:    mf.Root.line,
			Message: "root region name is required",
		}
	}

	root, err := buildRegion(mf.Root, nil, mf.RequiredAxes)
	if err != nil {
		return nil, err
	}

	name := mf.Name
	if name == "" {
		name = root.Name()
	}
	return &Template{Name: name, Root: root}, nil
}

// buildRegion builds spec and its subtree. inherited holds the parent's
// effective modifiers; axes spec omits are taken from it.
func buildRegion(spec RegionSpec, inherited map[string][]string, required []string) (*body.Region, error) {
	modifiers := make(map[string][]string, len(inherited)+len(spec.Modifiers))
	for axis, values := range inherited {
		modifiers[axis] = values
	}
	for axis, values := range spec.Modifiers {
		modifiers[axis] = values
	}

	region, err := body.NewRegion(spec.Name, spec.Options, modifiers, required)
	if err != nil {
		return nil, &LoadError{
			Line:    spec.line,
			Message: "invalid region " + quote(spec.Name),
			Cause:   err,
		}
	}

	for _, childSpec := range spec.Subregions {
		child, err := buildRegion(childSpec, modifiers, required)
		if err != nil {
			return nil, err
		}
		if err := region.AddSubregion(child); err != nil {
			return nil, &LoadError{
				Line:    childSpec.line,
				Message: "cannot attach " + quote(childSpec.Name) + " to " + quote(spec.Name),
				Cause:   err,
			}
		}
	}
	return region, nil
}

func quote(s string) string {
	return `"` + s + `"`
}
