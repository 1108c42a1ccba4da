package inspect

import (
	"testing"

	"github.com/lhmcgann/estim-go/pkg/address"
	"github.com/lhmcgann/estim-go/pkg/loader"
	"github.com/lhmcgann/estim-go/pkg/manager"
)

const handYAML = `
name: hand
required_axes: [palmar_dorsal]
root:
  name: hand
  modifiers:
    palmar_dorsal: [palmar, dorsal]
  subregions:
    - name: finger
      options: [index, middle]
    - name: palm
      modifiers:
        palmar_dorsal: []
`

// newRegistry returns a registry with the hand model under "left" and
// "right". "right" holds area 0 so left's IDs are offset.
func newRegistry(t *testing.T) *manager.Manager {
	t.Helper()

	tmpl, err := loader.ParseModel([]byte(handYAML))
	if err != nil {
		t.Fatalf("ParseModel: %v", err)
	}
	m := manager.New()
	for _, key := range []string{"left", "right"} {
		model, err := tmpl.NewModel()
		if err != nil {
			t.Fatal(err)
		}
		if _, err := m.AddModel(model, key); err != nil {
			t.Fatal(err)
		}
	}

	saves := []struct {
		key, text string
		kind      address.Kind
	}{
		{"right", "hand", address.KindArea},
		{"left", "hand | palmar", address.KindArea},
		{"left", "hand, index finger", address.KindArea},
		{"left", "hand, finger | dorsal", address.KindLocation},
	}
	for _, s := range saves {
		if _, err := m.SaveText(s.key, s.kind, s.text); err != nil {
			t.Fatalf("SaveText(%q): %v", s.text, err)
		}
	}
	return m
}
