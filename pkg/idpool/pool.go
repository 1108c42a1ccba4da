// Package idpool provides reusable integer ID allocation.
//
// A Pool hands out the lowest free ID below its capacity. Capacity is never
// a hard limit: callers grow it when the pool runs dry, which [Next] does
// automatically.
package idpool

import (
	"errors"
	"fmt"
)

// Pool errors.
var (
	ErrOutOfRange = errors.New("id out of range")
	ErrInUse      = errors.New("id already in use")
	ErrNotInUse   = errors.New("id not in use")
)

// Allocator is the contract the registries use to obtain IDs.
type Allocator interface {
	// TryGetNextFreeID returns the next free ID without reserving it.
	// ok is false when every ID below the capacity is in use.
	TryGetNextFreeID() (id int, ok bool)

	// UseID reserves id.
	UseID(id int) error

	// FreeID releases a reserved id.
	FreeID(id int) error

	// IsUsed reports whether id is reserved.
	IsUsed(id int) bool

	// IncrementCapacity grows the pool by n IDs.
	IncrementCapacity(n int)
}

// Next reserves and returns the next free ID from a, growing its capacity by
// one whenever it is exhausted.
func Next(a Allocator) (int, error) {
	for {
		id, ok := a.TryGetNextFreeID()
		if !ok {
			a.IncrementCapacity(1)
			continue
		}
		if err := a.UseID(id); err != nil {
			return 0, fmt.Errorf("reserve id %d: %w", id, err)
		}
		return id, nil
	}
}

// Pool is a growable, lowest-free-first Allocator.
// Pool is not safe for concurrent use.
type Pool struct {
	used  []bool
	count int
}

// New creates a pool with the given initial capacity.
func New(capacity int) *Pool {
	if capacity < 0 {
		capacity = 0
	}
	return &Pool{used: make([]bool, capacity)}
}

// Capacity returns the number of IDs the pool currently manages.
func (p *Pool) Capacity() int {
	return len(p.used)
}

// InUse returns the number of reserved IDs.
func (p *Pool) InUse() int {
	return p.count
}

// TryGetNextFreeID returns the lowest unreserved ID.
func (p *Pool) TryGetNextFreeID() (int, bool) {
	for id, used := range p.used {
		if !used {
			return id, true
		}
	}
	return 0, false
}

// UseID reserves id.
func (p *Pool) UseID(id int) error {
	if id < 0 || id >= len(p.used) {
		return fmt.Errorf("%w: %d (capacity %d)", ErrOutOfRange, id, len(p.used))
	}
	if p.used[id] {
		return fmt.Errorf("%w: %d", ErrInUse, id)
	}
	p.used[id] = true
	p.count++
	return nil
}

// FreeID releases id.
func (p *Pool) FreeID(id int) error {
	if id < 0 || id >= len(p.used) {
		return fmt.Errorf("%w: %d (capacity %d)", ErrOutOfRange, id, len(p.used))
	}
	if !p.used[id] {
		return fmt.Errorf("%w: %d", ErrNotInUse, id)
	}
	p.used[id] = false
	p.count--
	return nil
}

// IsUsed reports whether id is reserved.
func (p *Pool) IsUsed(id int) bool {
	return id >= 0 && id < len(p.used) && p.used[id]
}

// IncrementCapacity grows the pool by n IDs. Non-positive n is a no-op.
func (p *Pool) IncrementCapacity(n int) {
	if n <= 0 {
		return
	}
	p.used = append(p.used, make([]bool, n)...)
}

// Compile-time interface satisfaction check.
var _ Allocator = (*Pool)(nil)
