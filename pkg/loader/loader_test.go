package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lhmcgann/estim-go/pkg/address"
	"github.com/lhmcgann/estim-go/pkg/body"
	"github.com/lhmcgann/estim-go/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handYAML = `
name: hand
required_axes: [palmar_dorsal, ulnar_radial]
root:
  name: hand
  modifiers:
    palmar_dorsal: [palmar, dorsal]
    ulnar_radial: [ulnar, radial]
  subregions:
    - name: finger
      options: [thumb, index, middle, ring, little]
      subregions:
        - name: phalanx
          options: [proximal, middle, distal]
          modifiers:
            ulnar_radial: []
    - name: palm
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseModel(t *testing.T) {
	tmpl, err := ParseModel([]byte(handYAML))
	require.NoError(t, err)
	assert.Equal(t, "hand", tmpl.Name)

	root := tmpl.Root
	assert.Equal(t, "hand", root.Name())

	finger, ok := root.Subregion("finger")
	require.True(t, ok)
	assert.Equal(t, []string{"thumb", "index", "middle", "ring", "little"}, finger.Options())
	assert.Equal(t, []string{"palmar_dorsal", "ulnar_radial"}, finger.Axes(), "omitted axes are inherited")
	assert.ElementsMatch(t, []string{"palmar", "dorsal"}, finger.AxisValues("palmar_dorsal"))

	phalanx, ok := finger.Subregion("phalanx")
	require.True(t, ok)
	assert.Empty(t, phalanx.AxisValues("ulnar_radial"), "explicit empty axis is kept empty")
	assert.ElementsMatch(t, []string{"palmar", "dorsal"}, phalanx.AxisValues("palmar_dorsal"))

	_, ok = root.Subregion("palm")
	assert.True(t, ok)
}

func TestParseModelJSON(t *testing.T) {
	data := `{"required_axes": ["side"], "root": {"name": "arm", "modifiers": {"side": ["left", "right"]}, "subregions": [{"name": "elbow"}]}}`

	tmpl, err := ParseModel([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, "arm", tmpl.Name, "name defaults to the root region")

	elbow, ok := tmpl.Root.Subregion("elbow")
	require.True(t, ok)
	assert.Equal(t, []string{"side"}, elbow.Axes())
}

func TestParseModelErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
		line    int
	}{
		{
			name: "bad yaml",
			data: "root: [",
		},
		{
			name: "missing root name",
			data: "name: x\nroot:\n  options: [a]\n",
			line: 3,
		},
		{
			name:    "missing required axis",
			data:    "required_axes: [side]\nroot:\n  name: arm\n",
			wantErr: body.ErrMissingAxis,
			line:    3,
		},
		{
			name: "duplicate subregion",
			data: `root:
  name: arm
  subregions:
    - name: elbow
    - name: elbow
`,
			wantErr: body.ErrDuplicateRegion,
			line:    5,
		},
		{
			name:    "invalid region name",
			data:    "root:\n  name: upper arm\n",
			wantErr: body.ErrInvalidRegion,
		},
		{
			name:    "unsupported format",
			data:    "format: \"2.0\"\nroot:\n  name: arm\n",
			wantErr: version.ErrIncompatible,
		},
		{
			name: "malformed format",
			data: "format: latest\nroot:\n  name: arm\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModel([]byte(tt.data))
			require.Error(t, err)

			var le *LoadError
			require.True(t, errors.As(err, &le), "error is a *LoadError")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.line > 0 {
				assert.Equal(t, tt.line, le.Line)
			}
		})
	}
}

const footTOML = `
format = "1.0"
name = "foot"
required_axes = ["plantar_dorsal"]

[root]
name = "foot"

[root.modifiers]
plantar_dorsal = ["plantar", "dorsal"]

[[root.subregions]]
name = "toe"
options = ["big", "little"]

[[root.subregions.subregions]]
name = "nail"

[root.subregions.subregions.modifiers]
plantar_dorsal = ["dorsal"]

[[root.subregions]]
name = "heel"
`

func TestParseModelTOML(t *testing.T) {
	tmpl, err := ParseModelTOML([]byte(footTOML))
	require.NoError(t, err)
	assert.Equal(t, "foot", tmpl.Name)

	toe, ok := tmpl.Root.Subregion("toe")
	require.True(t, ok)
	assert.Equal(t, []string{"big", "little"}, toe.Options())
	assert.ElementsMatch(t, []string{"plantar", "dorsal"}, toe.AxisValues("plantar_dorsal"))

	nail, ok := toe.Subregion("nail")
	require.True(t, ok)
	assert.Equal(t, []string{"dorsal"}, nail.AxisValues("plantar_dorsal"))

	_, ok = tmpl.Root.Subregion("heel")
	assert.True(t, ok)

	t.Run("SyntaxErrorLine", func(t *testing.T) {
		_, err := ParseModelTOML([]byte("name = \"foot\"\n[root\n"))
		var le *LoadError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, "failed to parse TOML", le.Message)
		assert.NotZero(t, le.Line)
	})

	t.Run("Incompatible", func(t *testing.T) {
		_, err := ParseModelTOML([]byte("format = \"2.0\"\n[root]\nname = \"foot\"\n"))
		assert.ErrorIs(t, err, version.ErrIncompatible)
	})
}

func TestLoadModel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hand.yaml", handYAML)

	tmpl, err := LoadModel(path)
	require.NoError(t, err)

	a, err := tmpl.NewModel()
	require.NoError(t, err)
	b, err := tmpl.NewModel()
	require.NoError(t, err)
	assert.NotSame(t, a.Root(), b.Root())

	_, _, err = a.Save(address.MustParse(address.KindArea, "hand, index finger | palmar"), address.KindArea)
	assert.NoError(t, err)

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadModel(filepath.Join(dir, "nope.yaml"))
		var le *LoadError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, "failed to read file", le.Message)
	})

	t.Run("ErrorCarriesFile", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.yaml", "root:\n  name: arm\n  subregions:\n    - name: a b\n")
		_, err := LoadModel(bad)
		var le *LoadError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, bad, le.File)
		assert.Equal(t, 4, le.Line)
		assert.Contains(t, err.Error(), "bad.yaml:4:")
	})
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "root:\n  name: foot\n")
	writeFile(t, dir, "a.json", `{"root": {"name": "arm"}}`)
	writeFile(t, dir, "c.toml", "[root]\nname = \"hand\"\n")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0755))

	templates, err := LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, templates, 3)
	assert.Equal(t, "arm", templates[0].Name)
	assert.Equal(t, "foot", templates[1].Name)
	assert.Equal(t, "hand", templates[2].Name)

	_, err = LoadDirectory(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestLoadErrorString(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err  *LoadError
		want string
	}{
		{&LoadError{File: "a.yaml", Line: 3, Message: "bad"}, "a.yaml:3: bad"},
		{&LoadError{File: "a.yaml", Message: "bad", Cause: cause}, "a.yaml: bad: boom"},
		{&LoadError{Line: 7, Message: "bad"}, "line 7: bad"},
		{&LoadError{Message: "bad"}, "bad"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
	assert.ErrorIs(t, &LoadError{Cause: cause}, cause)
}

func TestBuiltin(t *testing.T) {
	names, err := BuiltinNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"arm", "hand"}, names)

	for _, name := range names {
		tmpl, err := Builtin(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, tmpl.Name)
	}

	first, err := Builtin("hand")
	require.NoError(t, err)
	second, err := Open(BuiltinPrefix + "hand")
	require.NoError(t, err)
	assert.Same(t, first, second, "builtin templates are cached")

	a, err := first.NewModel()
	require.NoError(t, err)
	b, err := second.NewModel()
	require.NoError(t, err)
	assert.NotSame(t, a.Root(), b.Root())

	_, err = a.Validate(address.MustParse(address.KindLocation, "hand, index finger, distal phalanx, tip | palmar"))
	assert.NoError(t, err)

	_, err = Builtin("tail")
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "builtin:tail", le.File)
}

func TestOpenFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hand.yaml", handYAML)
	tmpl, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "hand", tmpl.Name)
}
