package manager

import "github.com/lhmcgann/estim-go/pkg/idpool"

// localRef identifies a saved address inside one model.
type localRef struct {
	key string
	id  int
}

// bijection maps (model key, local ID) pairs to global IDs and back for one
// address kind.
type bijection struct {
	ids      idpool.Allocator
	toGlobal map[localRef]int
	toLocal  map[int]localRef
}

func newBijection() *bijection {
	return &bijection{
		ids:      idpool.New(0),
		toGlobal: make(map[localRef]int),
		toLocal:  make(map[int]localRef),
	}
}

func (b *bijection) global(key string, local int) (int, bool) {
	id, ok := b.toGlobal[localRef{key: key, id: local}]
	return id, ok
}

func (b *bijection) local(global int) (localRef, bool) {
	ref, ok := b.toLocal[global]
	return ref, ok
}

func (b *bijection) bind(key string, local, global int) {
	ref := localRef{key: key, id: local}
	b.toGlobal[ref] = global
	b.toLocal[global] = ref
}

func (b *bijection) len() int {
	return len(b.toLocal)
}
