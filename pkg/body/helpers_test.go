package body

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var handAxes = []string{"palmar_dorsal", "ulnar_radial"}

func handModifiers() map[string][]string {
	return map[string][]string{
		"palmar_dorsal": {"palmar", "dorsal"},
		"ulnar_radial":  {"ulnar", "radial"},
	}
}

// newHandTree builds hand -> finger -> phalanx with two modifier axes on
// every region. finger declares options for each digit.
func newHandTree(t *testing.T) *Region {
	t.Helper()

	hand, err := NewRegion("hand", nil, handModifiers(), handAxes)
	require.NoError(t, err)
	finger, err := NewRegion("finger", []string{"thumb", "index", "middle", "ring", "little"}, handModifiers(), handAxes)
	require.NoError(t, err)
	phalanx, err := NewRegion("phalanx", []string{"proximal", "middle", "distal"}, handModifiers(), handAxes)
	require.NoError(t, err)
	palm, err := NewRegion("palm", nil, handModifiers(), handAxes)
	require.NoError(t, err)

	require.NoError(t, finger.AddSubregion(phalanx))
	require.NoError(t, hand.AddSubregion(finger))
	require.NoError(t, hand.AddSubregion(palm))
	return hand
}
