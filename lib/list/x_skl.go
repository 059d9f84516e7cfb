package list

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/benz9527/xskl/lib/infra"
	"github.com/benz9527/xskl/xlog"
)

// References:
// https://www.cl.cam.ac.uk/teaching/0506/Algorithms/skiplists.pdf
// classic: https://github.com/antirez/disque/blob/master/src/skiplist.c
// https://github.com/andy-kimball/arenaskl
//
// Head (sentinel)    Data nodes
// +-+                                     +-+
// |2|------------------------------------>| |------------------->nil
// +-+              +-+                    +-+
// |1|------------->| |------------------->| |------------------->nil
// +-+       +-+    +-+    +-+      +-+    +-+     +-+
// |0|------>|A|--->|B|--->|C|----->|D|--->|E|---->|F|----------->nil
// +-+       +-+    +-+    +-+      +-+    +-+     +-+
//
// A node with level L is linked at the levels 0..=L.
// The head spans 0..=maxLevel and levels is the highest level in use.

const (
	sklMaxLevel = 32 // The forward array length of head is sklMaxLevel+1.
)

var (
	ErrXSklInvalidMaxLevel = errors.New("[x-skl] max level out of range [1, 32]")
	ErrXSklNilComparator   = errors.New("[x-skl] nil key comparator")
	ErrXSklNilRand         = errors.New("[x-skl] nil rand level generator")

	errXSklArenaBadRef        = errors.New("[x-skl] arena bad node ref")
	errXSklArenaDoubleFree    = errors.New("[x-skl] arena node double free")
	errXSklInvariantViolation = errors.New("[x-skl] invariant violation")
)

var _ SkipList[uint8, uint8] = (*xSkl[uint8, uint8])(nil)

type xSkl[K infra.OrderedKey, V any] struct {
	lock     sync.Mutex
	arena    *xSklArena[K, V]
	kcmp     infra.OrderedKeyComparator[K]
	rand     SklRand
	logger   xlog.XLogger
	stats    *xSklStats
	aux      []sklRef // The update vector, reused by every mutation under the lock.
	maxLevel int32
	levels   int32 // The highest level holding a data node, 0 if empty.
	nodeLen  int64
	validate bool
}

func (skl *xSkl[K, V]) Levels() int32 {
	skl.lock.Lock()
	defer skl.lock.Unlock()
	return skl.levels
}

func (skl *xSkl[K, V]) MaxLevel() int32 {
	return skl.maxLevel
}

func (skl *xSkl[K, V]) Len() int64 {
	skl.lock.Lock()
	defer skl.lock.Unlock()
	return skl.nodeLen
}

// findPredecessor moves forward from pred at level lvl and returns the
// last node whose key is lower than key.
func (skl *xSkl[K, V]) findPredecessor(pred sklRef, lvl int32, key K) sklRef {
	for {
		next := skl.arena.load(pred).next(lvl)
		if next == sklNilRef || skl.kcmp(key, skl.arena.load(next).key) <= 0 {
			return pred
		}
		pred = next
	}
}

// matchedSuccessor returns the successor of pred at level lvl if its key equals to key.
func (skl *xSkl[K, V]) matchedSuccessor(pred sklRef, lvl int32, key K) (sklRef, bool) {
	next := skl.arena.load(pred).next(lvl)
	if next != sklNilRef && skl.kcmp(key, skl.arena.load(next).key) == 0 {
		return next, true
	}
	return sklNilRef, false
}

// find descends from the top level and stops at the first level whose
// successor matches the key.
func (skl *xSkl[K, V]) find(key K) (sklRef, bool) {
	pred := sklHeadRef
	for /* vertical */ i := skl.levels; i >= 0; i-- {
		pred = skl.findPredecessor(pred, i, key)
		if target, ok := skl.matchedSuccessor(pred, i, key); ok {
			return target, true
		}
	}
	return sklNilRef, false
}

func (skl *xSkl[K, V]) randomLevel() int32 {
	lvl := skl.rand(skl.maxLevel)
	if lvl < 1 {
		return 1
	} else if lvl > skl.maxLevel {
		return skl.maxLevel
	}
	return lvl
}

func (skl *xSkl[K, V]) Insert(key K, val V) InsertStatus {
	skl.lock.Lock()
	defer skl.lock.Unlock()

	aux := skl.aux
	pred := sklHeadRef
	for /* vertical */ i := skl.levels; i >= 0; i-- {
		pred = skl.findPredecessor(pred, i, key)
		aux[i] = pred
	}
	if /* duplicated */ _, ok := skl.matchedSuccessor(aux[0], 0, key); ok {
		skl.stats.recordInsert(AlreadyExists)
		return AlreadyExists
	}

	lvl := skl.randomLevel()
	if lvl > skl.levels {
		for i := skl.levels + 1; i <= lvl; i++ {
			// The new levels are empty, so the head is the predecessor.
			aux[i] = sklHeadRef
		}
		skl.debug("[x-skl] levels grow", zap.Int32("from", skl.levels), zap.Int32("to", lvl))
		skl.levels = lvl
	}

	ref := skl.arena.allocate(lvl, key, val)
	node := skl.arena.load(ref)
	for i := int32(0); i <= lvl; i++ {
		pred := skl.arena.load(aux[i])
		node.setNext(i, pred.next(i))
		pred.setNext(i, ref)
	}
	skl.nodeLen++
	skl.stats.recordInsert(Inserted)
	skl.checkInvariants("insert")
	return Inserted
}

func (skl *xSkl[K, V]) Search(key K) (V, bool) {
	skl.lock.Lock()
	defer skl.lock.Unlock()

	ref, ok := skl.find(key)
	skl.stats.recordSearch(ok)
	if !ok {
		return *new(V), false
	}
	return skl.arena.load(ref).Val(), true
}

func (skl *xSkl[K, V]) Update(key K, val V) UpdateStatus {
	skl.lock.Lock()
	defer skl.lock.Unlock()

	ref, ok := skl.find(key)
	if !ok {
		skl.stats.recordUpdate(UpdateNotFound)
		return UpdateNotFound
	}
	skl.arena.load(ref).setVal(val)
	skl.stats.recordUpdate(Updated)
	return Updated
}

func (skl *xSkl[K, V]) Remove(key K) RemoveStatus {
	skl.lock.Lock()
	defer skl.lock.Unlock()

	var (
		pred   = sklHeadRef
		target = sklNilRef
	)
	for /* vertical */ i := skl.levels; i >= 0; i-- {
		pred = skl.findPredecessor(pred, i, key)
		if next, ok := skl.matchedSuccessor(pred, i, key); ok {
			// Unlink at the current level.
			skl.arena.load(pred).setNext(i, skl.arena.load(next).next(i))
			target = next
		}
	}
	if /* not found */ target == sklNilRef {
		skl.stats.recordRemove(NotFound)
		return NotFound
	}

	if err := skl.arena.recycle(target); err != nil {
		skl.fatal(err, "[x-skl] remove releases node failed")
	}
	skl.nodeLen--
	if /* reduce levels */ head := skl.arena.head(); skl.levels > 0 && head.next(skl.levels) == sklNilRef {
		from := skl.levels
		for skl.levels > 0 && head.next(skl.levels) == sklNilRef {
			skl.levels--
		}
		skl.debug("[x-skl] levels shrink", zap.Int32("from", from), zap.Int32("to", skl.levels))
	}
	skl.stats.recordRemove(Removed)
	skl.checkInvariants("remove")
	return Removed
}

func (skl *xSkl[K, V]) Foreach(action func(i int64, item SklIterationItem[K, V]) bool) {
	skl.lock.Lock()
	defer skl.lock.Unlock()

	i := int64(0)
	for x := skl.arena.head().next(0); x != sklNilRef; i++ {
		node := skl.arena.load(x)
		next := node.next(0)
		// The slot is recycled in place by remove, hand out a copy.
		item := &xSklIterationItem[K, V]{
			key:   node.key,
			val:   node.val,
			level: node.NodeLevel(),
		}
		if !action(i, item) {
			break
		}
		x = next
	}
}

// Release drops all the data nodes and detaches the stats from the
// meter provider. The skip-list stays usable, but its levels gauge
// is no longer reported.
func (skl *xSkl[K, V]) Release() {
	skl.reset()
	if err := skl.stats.detach(); err != nil && skl.logger != nil {
		skl.logger.Warn("[x-skl] detach stats failed", zap.Error(err))
	}
}

func (skl *xSkl[K, V]) reset() {
	skl.lock.Lock()
	defer skl.lock.Unlock()

	skl.stats.recordRelease(skl.nodeLen)
	skl.arena.reset()
	skl.levels = 0
	skl.nodeLen = 0
	for i := range skl.aux {
		skl.aux[i] = sklNilRef
	}
}

func (skl *xSkl[K, V]) debug(msg string, fields ...zap.Field) {
	if skl.logger == nil {
		return
	}
	skl.logger.Debug(msg, fields...)
}

// fatal reports a broken structure. It never returns.
func (skl *xSkl[K, V]) fatal(err error, msg string) {
	es := infra.WrapErrorStack(err)
	if skl.logger != nil {
		skl.logger.ErrorStack(es, msg,
			zap.Int32("levels", skl.levels),
			zap.Int64("len", skl.nodeLen),
		)
		_ = skl.logger.Sync()
	}
	panic(es)
}

func (skl *xSkl[K, V]) checkInvariants(op string) {
	if !skl.validate {
		return
	}
	if err := skl.verify(); err != nil {
		skl.fatal(err, "[x-skl] invariant violation after "+op)
	}
}

// NewSkl creates an empty skip-list whose nodes are at most maxLevel high.
func NewSkl[K infra.OrderedKey, V any](maxLevel int32, opts ...SklOption[K, V]) (SkipList[K, V], error) {
	if maxLevel < 1 || maxLevel > sklMaxLevel {
		return nil, ErrXSklInvalidMaxLevel
	}
	o := &sklOptions[K, V]{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.keyComparator == nil {
		o.keyComparator = infra.DefaultOrderedKeyComparator[K]()
	}
	if o.rand == nil {
		if o.randSeed != nil {
			o.rand = newCoinFlipSklRand(newSeededSource(*o.randSeed))
		} else {
			o.rand = newCoinFlipSklRand(newSafeSeededSource())
		}
	}

	skl := &xSkl[K, V]{
		arena:    newXSklArena[K, V](maxLevel, o.capHint),
		kcmp:     o.keyComparator,
		rand:     o.rand,
		aux:      make([]sklRef, maxLevel+1),
		maxLevel: maxLevel,
		validate: o.invariantCheck,
	}
	if o.logger != nil {
		skl.logger = o.logger.Named("x-skl")
	}
	if o.statsEnabled {
		skl.stats = newXSklStats(o.meterProvider, o.statsName, func() int64 {
			return int64(skl.Levels())
		})
	}
	return skl, nil
}
