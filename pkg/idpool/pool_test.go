package idpool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	t.Run("EmptyPoolHasNoFreeID", func(t *testing.T) {
		p := New(0)
		_, ok := p.TryGetNextFreeID()
		assert.False(t, ok)
		assert.Equal(t, 0, p.Capacity())
	})

	t.Run("LowestFreeFirst", func(t *testing.T) {
		p := New(3)
		require.NoError(t, p.UseID(0))
		require.NoError(t, p.UseID(2))

		id, ok := p.TryGetNextFreeID()
		require.True(t, ok)
		assert.Equal(t, 1, id)
		assert.False(t, p.IsUsed(1), "TryGetNextFreeID must not reserve")
	})

	t.Run("UseAndFree", func(t *testing.T) {
		p := New(2)
		require.NoError(t, p.UseID(1))
		assert.True(t, p.IsUsed(1))
		assert.Equal(t, 1, p.InUse())

		assert.ErrorIs(t, p.UseID(1), ErrInUse)
		require.NoError(t, p.FreeID(1))
		assert.False(t, p.IsUsed(1))
		assert.ErrorIs(t, p.FreeID(1), ErrNotInUse)
		assert.Equal(t, 0, p.InUse())
	})

	t.Run("OutOfRange", func(t *testing.T) {
		p := New(1)
		assert.ErrorIs(t, p.UseID(1), ErrOutOfRange)
		assert.ErrorIs(t, p.UseID(-1), ErrOutOfRange)
		assert.ErrorIs(t, p.FreeID(5), ErrOutOfRange)
		assert.False(t, p.IsUsed(-1))
		assert.False(t, p.IsUsed(99))
	})

	t.Run("IncrementCapacity", func(t *testing.T) {
		p := New(0)
		p.IncrementCapacity(2)
		p.IncrementCapacity(0)
		p.IncrementCapacity(-3)
		assert.Equal(t, 2, p.Capacity())
	})
}

func TestNext(t *testing.T) {
	t.Run("GrowsOnExhaustion", func(t *testing.T) {
		p := New(0)
		for want := 0; want < 5; want++ {
			id, err := Next(p)
			require.NoError(t, err)
			assert.Equal(t, want, id)
		}
		assert.Equal(t, 5, p.Capacity(), "capacity grows by one per exhaustion")
	})

	t.Run("ReusesFreedID", func(t *testing.T) {
		p := New(0)
		for i := 0; i < 3; i++ {
			_, err := Next(p)
			require.NoError(t, err)
		}
		require.NoError(t, p.FreeID(1))

		id, err := Next(p)
		require.NoError(t, err)
		assert.Equal(t, 1, id)
	})

	t.Run("ReservationFailure", func(t *testing.T) {
		a := &stubAllocator{}
		a.On("TryGetNextFreeID").Return(4, true).Once()
		a.On("UseID", 4).Return(errors.New("boom")).Once()

		_, err := Next(a)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reserve id 4")
		a.AssertExpectations(t)
	})

	t.Run("RetriesAfterGrowing", func(t *testing.T) {
		a := &stubAllocator{}
		a.On("TryGetNextFreeID").Return(0, false).Once()
		a.On("IncrementCapacity", 1).Once()
		a.On("TryGetNextFreeID").Return(7, true).Once()
		a.On("UseID", 7).Return(nil).Once()

		id, err := Next(a)
		require.NoError(t, err)
		assert.Equal(t, 7, id)
		a.AssertExpectations(t)
	})
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
