package list

import (
	"fmt"

	"github.com/benz9527/xskl/lib/infra"
)

// sklRef addresses a node slot inside the arena.
// The slot 0 is the head (sentinel) node. A forward link never points
// back to the head, so 0 is also used as "no successor".
type sklRef uint32

const (
	sklHeadRef sklRef = 0
	sklNilRef  sklRef = 0
)

var (
	_ SklElement[uint8, uint8]       = (*xSklNode[uint8, uint8])(nil)
	_ SklIterationItem[uint8, uint8] = (*xSklIterationItem[uint8, uint8])(nil)
)

// xSklIterationItem is a snapshot of a node, detached from the arena slot.
type xSklIterationItem[K infra.OrderedKey, V any] struct {
	key   K
	val   V
	level uint32
}

func (item *xSklIterationItem[K, V]) Key() K            { return item.key }
func (item *xSklIterationItem[K, V]) Val() V            { return item.val }
func (item *xSklIterationItem[K, V]) NodeLevel() uint32 { return item.level }

// The forward array index > 0, it is the Y axis, the cache used to skip
// over the nodes of the lower level.
// The forward array index == 0, it is the X axis, the data container.
type xSklNode[K infra.OrderedKey, V any] struct {
	key K
	val V
	// The highest index of forward, the node participates in levels 0..=level.
	level int32
	// Works for the forward iteration direction, one successor per level.
	forward []sklRef
	live    bool
}

func (node *xSklNode[K, V]) Key() K {
	return node.key
}

func (node *xSklNode[K, V]) Val() V {
	return node.val
}

func (node *xSklNode[K, V]) setVal(val V) {
	node.val = val
}

func (node *xSklNode[K, V]) NodeLevel() uint32 {
	return uint32(node.level)
}

func (node *xSklNode[K, V]) next(lvl int32) sklRef {
	return node.forward[lvl]
}

func (node *xSklNode[K, V]) setNext(lvl int32, ref sklRef) {
	node.forward[lvl] = ref
}

// String renders the key/value pair, e.g. "(1, 9)".
func (node *xSklNode[K, V]) String() string {
	return fmt.Sprintf("(%v, %v)", node.key, node.val)
}

// init (re)builds the slot with level+1 empty forward links.
func (node *xSklNode[K, V]) init(level int32, key K, val V) {
	node.key, node.val, node.level = key, val, level
	if cap(node.forward) >= int(level)+1 {
		node.forward = node.forward[:level+1]
		for i := range node.forward {
			node.forward[i] = sklNilRef
		}
	} else {
		node.forward = make([]sklRef, level+1)
	}
	node.live = true
}

// free zeroes the payload so the GC is able to reclaim whatever
// the key/value referenced. The forward array is kept for recycling.
func (node *xSklNode[K, V]) free() {
	node.key, node.val = *new(K), *new(V)
	node.level = 0
	for i := range node.forward {
		node.forward[i] = sklNilRef
	}
	node.live = false
}
