package list

import (
	"fmt"

	"go.uber.org/multierr"
)

func invariantViolation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errXSklInvariantViolation, fmt.Sprintf(format, args...))
}

// verify walks every level chain and collects all the broken
// invariants. The caller must hold the lock.
//  1. levels is in [0, maxLevel], the levels above it are empty and
//     the level itself holds a node unless the skip-list is empty.
//  2. Each level chain is strictly increasing by key.
//  3. A node with level L is linked at exactly the levels 0..=L.
//  4. nodeLen equals the level 0 chain length and the arena live slots.
func (skl *xSkl[K, V]) verify() error {
	var (
		err      error
		head     = skl.arena.head()
		linkedAt = make(map[sklRef]int32, skl.nodeLen)
		count    int64
		maxSteps = skl.arena.slotLen()
	)
	if skl.levels < 0 || skl.levels > skl.maxLevel {
		err = multierr.Append(err, invariantViolation("levels %d out of [0, %d]", skl.levels, skl.maxLevel))
		return err
	}
	for i := skl.levels + 1; i <= skl.maxLevel; i++ {
		if head.next(i) != sklNilRef {
			err = multierr.Append(err, invariantViolation("level %d above levels %d is not empty", i, skl.levels))
		}
	}
	if skl.levels > 0 && head.next(skl.levels) == sklNilRef {
		err = multierr.Append(err, invariantViolation("top level %d is empty", skl.levels))
	}

	for /* bottom-up */ i := int32(0); i <= skl.levels; i++ {
		var (
			prev  = sklNilRef
			steps = 0
		)
		for x := head.next(i); x != sklNilRef; x = skl.arena.load(x).next(i) {
			if steps++; steps > maxSteps {
				err = multierr.Append(err, invariantViolation("level %d chain is cyclic", i))
				break
			}
			node := skl.arena.load(x)
			if !node.live {
				err = multierr.Append(err, invariantViolation("level %d links the free slot %d", i, x))
			}
			if node.level < i || node.level > skl.levels {
				err = multierr.Append(err, invariantViolation("node %v with level %d is linked at level %d, levels %d",
					node, node.level, i, skl.levels))
			}
			if prev != sklNilRef && skl.kcmp(skl.arena.load(prev).key, node.key) >= 0 {
				err = multierr.Append(err, invariantViolation("level %d is not strictly increasing at %v -> %v",
					i, skl.arena.load(prev), node))
			}
			if linkedAt[x] != i {
				err = multierr.Append(err, invariantViolation("node %v is linked at level %d but misses a lower level", node, i))
			}
			linkedAt[x] = i + 1
			if i == 0 {
				count++
			}
			prev = x
		}
	}
	for x, n := range linkedAt {
		if node := skl.arena.load(x); n != node.level+1 {
			err = multierr.Append(err, invariantViolation("node %v with level %d is linked at %d levels", node, node.level, n))
		}
	}
	if count != skl.nodeLen {
		err = multierr.Append(err, invariantViolation("len %d differs from the level 0 count %d", skl.nodeLen, count))
	}
	if live := skl.arena.liveLen(); live != skl.nodeLen {
		err = multierr.Append(err, invariantViolation("len %d differs from the arena live slots %d", skl.nodeLen, live))
	}
	return err
}
