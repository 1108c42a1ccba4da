package body

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDSet(t *testing.T) {
	s := NewIDSet(3, 1, 3)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(1))
	assert.False(t, s.Has(2))

	s.Add(2)
	assert.Equal(t, []int{1, 2, 3}, s.Sorted())

	c := s.Clone()
	c.Add(9)
	assert.False(t, s.Has(9), "clone does not alias")

	u := NewIDSet(1).Union(NewIDSet(5))
	assert.Equal(t, []int{1, 5}, u.Sorted())

	var empty IDSet
	assert.Equal(t, []int{4}, empty.Union(NewIDSet(4)).Sorted())
	assert.False(t, empty.Has(4))
	assert.Empty(t, empty.Sorted())
}

func TestLocalizationMerge(t *testing.T) {
	a := Localization{Fully: NewIDSet(1, 2), Partially: NewIDSet(3)}
	b := Localization{Fully: NewIDSet(3), Partially: NewIDSet(4)}
	c := Localization{Fully: NewIDSet(5), Partially: NewIDSet(1)}

	equal := func(t *testing.T, want, got Localization) {
		t.Helper()
		assert.Equal(t, want.Fully.Sorted(), got.Fully.Sorted(), "fully")
		assert.Equal(t, want.Partially.Sorted(), got.Partially.Sorted(), "partially")
	}

	t.Run("Commutative", func(t *testing.T) {
		equal(t, a.Merge(b), b.Merge(a))
	})

	t.Run("Associative", func(t *testing.T) {
		equal(t, a.Merge(b).Merge(c), a.Merge(b.Merge(c)))
	})

	t.Run("EmptyIsIdentity", func(t *testing.T) {
		equal(t, a, a.Merge(NewLocalization()))
		equal(t, a, NewLocalization().Merge(a))
		equal(t, a, a.Merge(Localization{}))
	})

	t.Run("DualMembershipKept", func(t *testing.T) {
		got := a.Merge(b)
		assert.True(t, got.Fully.Has(3))
		assert.True(t, got.Partially.Has(3), "an ID can be both fully and partially containing")
	})

	t.Run("OperandsUntouched", func(t *testing.T) {
		_ = a.Merge(b)
		assert.Equal(t, []int{1, 2}, a.Fully.Sorted())
		assert.Equal(t, []int{3}, a.Partially.Sorted())
	})

	t.Run("IsEmptyAndContains", func(t *testing.T) {
		assert.True(t, NewLocalization().IsEmpty())
		assert.True(t, Localization{}.IsEmpty())
		assert.False(t, a.IsEmpty())
		assert.True(t, a.Contains(3))
		assert.False(t, a.Contains(7))
	})
}
