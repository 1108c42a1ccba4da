package manager

import (
	"testing"

	"github.com/lhmcgann/estim-go/pkg/address"
	"github.com/lhmcgann/estim-go/pkg/body"
	"github.com/lhmcgann/estim-go/pkg/log"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var handAxes = []string{"palmar_dorsal", "ulnar_radial"}

func handModifiers() map[string][]string {
	return map[string][]string{
		"palmar_dorsal": {"palmar", "dorsal"},
		"ulnar_radial":  {"ulnar", "radial"},
	}
}

func newHandTemplate(t *testing.T) *body.Region {
	t.Helper()

	hand, err := body.NewRegion("hand", nil, handModifiers(), handAxes)
	require.NoError(t, err)
	finger, err := body.NewRegion("finger", []string{"thumb", "index", "middle", "ring", "little"}, handModifiers(), handAxes)
	require.NoError(t, err)
	phalanx, err := body.NewRegion("phalanx", []string{"proximal", "middle", "distal"}, handModifiers(), handAxes)
	require.NoError(t, err)
	palm, err := body.NewRegion("palm", nil, handModifiers(), handAxes)
	require.NoError(t, err)

	require.NoError(t, finger.AddSubregion(phalanx))
	require.NoError(t, hand.AddSubregion(finger))
	require.NoError(t, hand.AddSubregion(palm))
	return hand
}

// newTwoHands returns a manager holding two hand models under "left" and
// "right".
func newTwoHands(t *testing.T, opts ...Option) *Manager {
	t.Helper()

	template := newHandTemplate(t)
	m := New(opts...)
	for _, key := range []string{"left", "right"} {
		model, err := body.NewModel("hand", template)
		require.NoError(t, err)
		_, err = m.AddModel(model, key)
		require.NoError(t, err)
	}
	return m
}

func loc(text string) address.Spec  { return address.MustParse(address.KindLocation, text) }
func area(text string) address.Spec { return address.MustParse(address.KindArea, text) }

type recordingLogger struct {
	events []log.Event
}

func (r *recordingLogger) Log(e log.Event) { r.events = append(r.events, e) }

func (r *recordingLogger) categories() []log.Category {
	out := make([]log.Category, len(r.events))
	for i, e := range r.events {
		out[i] = e.Category
	}
	return out
}

type stubAllocator struct{ mock.Mock }

func (a *stubAllocator) TryGetNextFreeID() (int, bool) {
	ret := a.Called()
	return ret.Int(0), ret.Bool(1)
}
func (a *stubAllocator) UseID(id int) error      { return a.Called(id).Error(0) }
func (a *stubAllocator) FreeID(id int) error     { return a.Called(id).Error(0) }
func (a *stubAllocator) IsUsed(id int) bool      { return a.Called(id).Bool(0) }
func (a *stubAllocator) IncrementCapacity(n int) { a.Called(n) }
