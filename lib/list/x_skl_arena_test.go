package list

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestXSklArena_AllocateRecycle(t *testing.T) {
	arena := newXSklArena[int, string](4, 2)
	require.Equal(t, int64(0), arena.liveLen())
	require.Equal(t, 0, arena.slotLen())
	require.Len(t, arena.head().forward, 5)

	r1 := arena.allocate(1, 1, "a")
	r2 := arena.allocate(3, 2, "b")
	r3 := arena.allocate(2, 3, "c")
	require.Equal(t, sklRef(1), r1)
	require.Equal(t, sklRef(2), r2)
	require.Equal(t, sklRef(3), r3)
	require.Equal(t, int64(3), arena.liveLen())
	require.Equal(t, "(2, b)", arena.load(r2).String())
	require.Len(t, arena.load(r2).forward, 4)

	require.NoError(t, arena.recycle(r2))
	require.Equal(t, int64(2), arena.liveLen())
	require.Equal(t, 1, arena.recycledLen())
	freed := arena.load(r2)
	require.False(t, freed.live)
	require.Equal(t, 0, freed.key)
	require.Equal(t, "", freed.val)

	// The recycled slot and its forward array are reused.
	r4 := arena.allocate(1, 4, "d")
	require.Equal(t, r2, r4)
	require.Len(t, arena.load(r4).forward, 2)
	require.Equal(t, 0, arena.recycledLen())
	require.Equal(t, 3, arena.slotLen())
}

func TestXSklArena_RecycleErrors(t *testing.T) {
	arena := newXSklArena[int, int](4, 0)
	ref := arena.allocate(1, 1, 1)

	err := arena.recycle(sklHeadRef)
	require.True(t, errors.Is(err, errXSklArenaBadRef))
	err = arena.recycle(ref + 10)
	require.True(t, errors.Is(err, errXSklArenaBadRef))

	require.NoError(t, arena.recycle(ref))
	err = arena.recycle(ref)
	require.True(t, errors.Is(err, errXSklArenaDoubleFree))
	require.Equal(t, int64(0), arena.liveLen())
	require.Equal(t, 1, arena.recycledLen())
}

func TestXSklArena_Reset(t *testing.T) {
	arena := newXSklArena[int, int](2, 0)
	ref := arena.allocate(2, 1, 1)
	arena.head().setNext(0, ref)
	arena.head().setNext(2, ref)
	arena.allocate(1, 2, 2)
	require.NoError(t, arena.recycle(ref))

	arena.reset()
	require.Equal(t, int64(0), arena.liveLen())
	require.Equal(t, 0, arena.slotLen())
	require.Equal(t, 0, arena.recycledLen())
	for i := int32(0); i <= 2; i++ {
		require.Equal(t, sklNilRef, arena.head().next(i))
	}
}
