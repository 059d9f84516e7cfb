package list

import (
	"fmt"

	"github.com/benz9527/xskl/lib/infra"
)

// References:
// https://github.com/dgraph-io/badger/blob/master/skl/arena.go
// https://github.com/andy-kimball/arenaskl

// xSklArena owns every node of a skip-list.
// Nodes are addressed by the slot index instead of pointer, so an
// unlinked node can't be reached by a stale forward link, and the
// recycled slots are reused by the following inserts.
// The *xSklNode returned by load is only valid until the next allocate,
// because the growth of nodes may move the backing array.
type xSklArena[K infra.OrderedKey, V any] struct {
	nodes    []xSklNode[K, V]
	recycled []sklRef
	live     int64
}

func (arena *xSklArena[K, V]) head() *xSklNode[K, V] {
	return &arena.nodes[sklHeadRef]
}

func (arena *xSklArena[K, V]) load(ref sklRef) *xSklNode[K, V] {
	return &arena.nodes[ref]
}

func (arena *xSklArena[K, V]) allocate(level int32, key K, val V) sklRef {
	var ref sklRef
	if l := len(arena.recycled); l > 0 {
		ref = arena.recycled[l-1]
		arena.recycled = arena.recycled[:l-1]
	} else {
		arena.nodes = append(arena.nodes, xSklNode[K, V]{})
		ref = sklRef(len(arena.nodes) - 1)
	}
	arena.nodes[ref].init(level, key, val)
	arena.live++
	return ref
}

// recycle releases the slot exactly once.
// Releasing the head, an out of range slot or a free slot is an
// invariant violation of the owner.
func (arena *xSklArena[K, V]) recycle(ref sklRef) error {
	if ref == sklHeadRef || int(ref) >= len(arena.nodes) {
		return fmt.Errorf("%w: slot %d out of range", errXSklArenaBadRef, ref)
	}
	node := &arena.nodes[ref]
	if !node.live {
		return fmt.Errorf("%w: slot %d", errXSklArenaDoubleFree, ref)
	}
	node.free()
	arena.recycled = append(arena.recycled, ref)
	arena.live--
	return nil
}

func (arena *xSklArena[K, V]) liveLen() int64 {
	return arena.live
}

func (arena *xSklArena[K, V]) slotLen() int {
	return len(arena.nodes) - 1
}

func (arena *xSklArena[K, V]) recycledLen() int {
	return len(arena.recycled)
}

// reset drops every data node but keeps the head.
func (arena *xSklArena[K, V]) reset() {
	head := arena.nodes[sklHeadRef]
	for i := range head.forward {
		head.forward[i] = sklNilRef
	}
	clear(arena.nodes[1:])
	arena.nodes = arena.nodes[:1]
	arena.recycled = arena.recycled[:0]
	arena.live = 0
}

func newXSklArena[K infra.OrderedKey, V any](maxLevel int32, capHint int) *xSklArena[K, V] {
	if capHint <= 0 {
		capHint = 64
	}
	arena := &xSklArena[K, V]{
		nodes:    make([]xSklNode[K, V], 1, capHint+1),
		recycled: make([]sklRef, 0, 16),
	}
	// The head spans all the levels and never carries a key.
	arena.nodes[sklHeadRef].init(maxLevel, *new(K), *new(V))
	arena.nodes[sklHeadRef].live = false
	return arena
}
