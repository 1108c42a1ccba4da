package manager

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/lhmcgann/estim-go/pkg/address"
	"github.com/lhmcgann/estim-go/pkg/body"
	"github.com/lhmcgann/estim-go/pkg/idpool"
	"github.com/lhmcgann/estim-go/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddModel(t *testing.T) {
	template := newHandTemplate(t)
	m := New()

	model, err := body.NewModel("hand", template)
	require.NoError(t, err)

	key, err := m.AddModel(model, "")
	require.NoError(t, err)
	assert.Equal(t, "hand", key, "empty key falls back to the model name")

	other, err := body.NewModel("hand", template)
	require.NoError(t, err)
	_, err = m.AddModel(other, "hand")
	assert.ErrorIs(t, err, ErrDuplicateModel)

	_, err = m.AddModel(nil, "x")
	assert.ErrorIs(t, err, ErrNilModel)

	key, err = m.AddModel(other, "other")
	require.NoError(t, err)
	assert.Equal(t, "other", key)

	assert.Equal(t, []string{"hand", "other"}, m.ModelKeys())

	got, err := m.Model("other")
	require.NoError(t, err)
	assert.Same(t, other, got)

	_, err = m.Model("missing")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestSave(t *testing.T) {
	t.Run("GlobalIDsUniqueAcrossModels", func(t *testing.T) {
		m := newTwoHands(t)

		l, err := m.Save("left", loc("hand, finger | palmar"), address.KindLocation)
		require.NoError(t, err)
		r, err := m.Save("right", loc("hand, finger | palmar"), address.KindLocation)
		require.NoError(t, err)
		assert.NotEqual(t, l, r)

		key, spec, err := m.Retrieve(l, address.KindLocation)
		require.NoError(t, err)
		assert.Equal(t, "left", key)
		assert.Equal(t, "hand, finger | palmar", spec.String())

		key, _, err = m.Retrieve(r, address.KindLocation)
		require.NoError(t, err)
		assert.Equal(t, "right", key)

		// Both are local ID 0 in their own model.
		gl, err := m.GlobalID("left", 0, address.KindLocation)
		require.NoError(t, err)
		assert.Equal(t, l, gl)
		gr, err := m.GlobalID("right", 0, address.KindLocation)
		require.NoError(t, err)
		assert.Equal(t, r, gr)
	})

	t.Run("KindsHaveSeparateIDSpaces", func(t *testing.T) {
		m := newTwoHands(t)

		l, err := m.Save("left", loc("hand"), address.KindLocation)
		require.NoError(t, err)
		a, err := m.Save("left", area("hand"), address.KindArea)
		require.NoError(t, err)
		assert.Equal(t, 0, l)
		assert.Equal(t, 0, a)
		assert.Equal(t, 1, m.Len(address.KindLocation))
		assert.Equal(t, 1, m.Len(address.KindArea))
	})

	t.Run("Idempotent", func(t *testing.T) {
		m := newTwoHands(t)

		first, err := m.SaveText("left", address.KindArea, "hand, index finger | palmar, ulnar")
		require.NoError(t, err)
		second, err := m.SaveText("left", address.KindArea, "Hand, index finger | ulnar, palmar")
		require.NoError(t, err)
		assert.Equal(t, first, second)

		// The duplicate save released its reservation.
		next, err := m.SaveText("right", address.KindArea, "hand")
		require.NoError(t, err)
		assert.Equal(t, first+1, next)
	})

	t.Run("UnknownModel", func(t *testing.T) {
		m := newTwoHands(t)
		_, err := m.Save("middle", loc("hand"), address.KindLocation)
		assert.ErrorIs(t, err, ErrModelNotFound)
	})

	t.Run("UnresolvedReservesNothing", func(t *testing.T) {
		m := newTwoHands(t)

		_, err := m.Save("left", loc("foot, toe"), address.KindLocation)
		assert.ErrorIs(t, err, body.ErrUnresolvedRegion)
		assert.Equal(t, 0, m.Len(address.KindLocation))

		id, err := m.Save("left", loc("hand"), address.KindLocation)
		require.NoError(t, err)
		assert.Equal(t, 0, id)
	})

	t.Run("InvalidModifier", func(t *testing.T) {
		m := newTwoHands(t)
		_, err := m.SaveText("left", address.KindLocation, "hand | palmar, dorsal")
		assert.ErrorIs(t, err, body.ErrInvalidModifier)
	})

	t.Run("ParseError", func(t *testing.T) {
		m := newTwoHands(t)
		_, err := m.SaveText("left", address.KindLocation, "hand, , finger")
		assert.ErrorIs(t, err, address.ErrParse)
	})

	t.Run("KindMismatch", func(t *testing.T) {
		m := newTwoHands(t)
		_, err := m.Save("left", loc("hand"), address.KindArea)
		assert.ErrorIs(t, err, body.ErrKindMismatch)

		_, err = m.Save("left", loc("hand").WithKind(0), 0)
		assert.ErrorIs(t, err, body.ErrKindMismatch)
	})

	t.Run("GlobalAllocatorFailure", func(t *testing.T) {
		ids := &stubAllocator{}
		ids.On("TryGetNextFreeID").Return(0, true).Once()
		ids.On("UseID", 0).Return(idpool.ErrInUse).Once()

		m := newTwoHands(t, WithAllocators(ids, nil))

		_, err := m.Save("left", loc("hand"), address.KindLocation)
		assert.ErrorIs(t, err, idpool.ErrInUse)

		model, _ := m.Model("left")
		assert.Equal(t, 0, model.Len(address.KindLocation), "model untouched")
		ids.AssertExpectations(t)
	})
}

func TestRetrieveAndGlobalIDErrors(t *testing.T) {
	m := newTwoHands(t)

	_, _, err := m.Retrieve(7, address.KindArea)
	assert.ErrorIs(t, err, body.ErrNotFound)

	_, _, err = m.Retrieve(0, 0)
	assert.ErrorIs(t, err, body.ErrKindMismatch)

	_, err = m.GlobalID("left", 3, address.KindLocation)
	assert.ErrorIs(t, err, body.ErrNotFound)

	_, err = m.GlobalID("missing", 0, address.KindLocation)
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestLocate(t *testing.T) {
	m := newTwoHands(t)

	_, err := m.Save("right", area("hand"), address.KindArea)
	require.NoError(t, err)
	_, err = m.Save("left", area("hand, palm"), address.KindArea)
	require.NoError(t, err)
	id, err := m.Save("left", area("hand, finger"), address.KindArea)
	require.NoError(t, err)
	require.Equal(t, 2, id)

	key, local, err := m.Locate(id, address.KindArea)
	require.NoError(t, err)
	assert.Equal(t, "left", key)
	assert.Equal(t, 1, local)

	global, err := m.GlobalID(key, local, address.KindArea)
	require.NoError(t, err)
	assert.Equal(t, id, global)

	_, _, err = m.Locate(id, address.KindLocation)
	assert.ErrorIs(t, err, body.ErrNotFound)
	_, _, err = m.Locate(0, 0)
	assert.ErrorIs(t, err, body.ErrKindMismatch)
}

func TestLocalize(t *testing.T) {
	t.Run("TranslatesToGlobalIDs", func(t *testing.T) {
		m := newTwoHands(t)

		// Shift the global ID space so local and global IDs differ.
		_, err := m.Save("right", area("hand"), address.KindArea)
		require.NoError(t, err)

		finger, err := m.Save("left", area("hand, finger | palmar"), address.KindArea)
		require.NoError(t, err)
		require.Equal(t, 1, finger)

		got, err := m.Localize("left", loc("hand, finger, distal phalanx | palmar, radial"))
		require.NoError(t, err)
		assert.Equal(t, []int{finger}, got.Fully.Sorted())
		assert.Empty(t, got.Partially.Sorted())
	})

	t.Run("ModelsAreIsolated", func(t *testing.T) {
		m := newTwoHands(t)
		_, err := m.Save("right", area("hand"), address.KindArea)
		require.NoError(t, err)

		got, err := m.Localize("left", loc("hand, finger"))
		require.NoError(t, err)
		assert.True(t, got.IsEmpty())
	})

	t.Run("DisjointModifiersNotReported", func(t *testing.T) {
		m := newTwoHands(t)
		_, err := m.Save("left", area("hand, finger | palmar"), address.KindArea)
		require.NoError(t, err)

		got, err := m.Localize("left", loc("hand, finger | dorsal"))
		require.NoError(t, err)
		assert.True(t, got.IsEmpty())
	})

	t.Run("Partial", func(t *testing.T) {
		m := newTwoHands(t)
		a, err := m.Save("left", area("hand | palmar, ulnar"), address.KindArea)
		require.NoError(t, err)

		got, err := m.Localize("left", loc("hand, palm | palmar"))
		require.NoError(t, err)
		assert.Equal(t, []int{a}, got.Partially.Sorted())
	})

	t.Run("Unresolved", func(t *testing.T) {
		m := newTwoHands(t)
		got, err := m.Localize("left", loc("hand, toe"))
		assert.ErrorIs(t, err, body.ErrUnresolvedRegion)
		assert.True(t, got.IsEmpty())
		assert.NotPanics(t, func() { got.Fully.Add(1) }, "error results are writable")
	})

	t.Run("UnknownModel", func(t *testing.T) {
		m := newTwoHands(t)
		got, err := m.Localize("nobody", loc("hand"))
		assert.ErrorIs(t, err, ErrModelNotFound)
		assert.NotPanics(t, func() { got.Partially.Add(1) })
	})
}

func TestLocalizeAll(t *testing.T) {
	m := newTwoHands(t)

	whole, err := m.Save("left", area("hand | palmar"), address.KindArea)
	require.NoError(t, err)
	tip, err := m.Save("left", area("hand, finger, distal phalanx | palmar, ulnar"), address.KindArea)
	require.NoError(t, err)

	got, err := m.LocalizeAll("left",
		loc("hand, palm | palmar"),
		loc("hand, finger, phalanx | palmar"),
	)
	require.NoError(t, err)
	assert.Equal(t, []int{whole}, got.Fully.Sorted())
	assert.Equal(t, []int{tip}, got.Partially.Sorted())

	empty, err := m.LocalizeAll("left")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	failed, err := m.LocalizeAll("left", loc("hand"), loc("foot"))
	assert.ErrorIs(t, err, body.ErrUnresolvedRegion)
	assert.NotPanics(t, func() { failed.Fully.Add(1) })
}

func TestEvents(t *testing.T) {
	rec := &recordingLogger{}
	m := newTwoHands(t, WithLogger(rec), WithSessionID("session-1"))

	_, err := m.Save("left", area("hand"), address.KindArea)
	require.NoError(t, err)
	_, err = m.Localize("left", loc("hand | palmar"))
	require.NoError(t, err)
	_, err = m.Save("left", loc("foot"), address.KindLocation)
	require.Error(t, err)

	assert.Equal(t, []log.Category{
		log.CategoryModel,
		log.CategoryModel,
		log.CategorySave,
		log.CategoryLocalize,
		log.CategoryError,
	}, rec.categories())

	for _, e := range rec.events {
		assert.Equal(t, "session-1", e.SessionID)
		assert.False(t, e.Timestamp.IsZero())
	}

	model := rec.events[0].Model
	require.NotNil(t, model)
	assert.Equal(t, "hand", model.Name)
	assert.Equal(t, 4, model.Regions)

	save := rec.events[2].Save
	require.NotNil(t, save)
	assert.Equal(t, address.KindArea, save.Kind)
	assert.Equal(t, "hand", save.Address)
	assert.True(t, save.IsNew)

	localize := rec.events[3].Localize
	require.NotNil(t, localize)
	assert.Equal(t, []int{0}, localize.Fully)

	failure := rec.events[4].Error
	require.NotNil(t, failure)
	assert.Equal(t, "save", failure.Operation)
	assert.Equal(t, "foot", failure.Address)
}

func TestSlogOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := newTwoHands(t, WithSlog(logger))
	_, err := m.Save("left", area("hand"), address.KindArea)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "msg=saved")
	assert.Contains(t, buf.String(), "model=left")
}

func TestDefaultSessionID(t *testing.T) {
	a, b := New(), New()
	assert.NotEmpty(t, a.SessionID())
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}
