package list

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xskl/lib/infra"
	"github.com/benz9527/xskl/xlog"
)

func fixedLevels(levels ...int32) SklRand {
	i := 0
	return func(int32) int32 {
		lvl := levels[i%len(levels)]
		i++
		return lvl
	}
}

func newCorruptibleSkl(t *testing.T) *xSkl[int, int] {
	t.Helper()
	skl, err := NewSkl[int, int](4, WithSklRandLevelGen[int, int](fixedLevels(1, 3, 2, 1)))
	require.NoError(t, err)
	for k := 1; k <= 4; k++ {
		require.Equal(t, Inserted, skl.Insert(k, k*10))
	}
	x := skl.(*xSkl[int, int])
	require.NoError(t, x.verify())
	return x
}

func TestXSkl_VerifyDetectsDisorder(t *testing.T) {
	skl := newCorruptibleSkl(t)
	first := skl.arena.head().next(0)
	skl.arena.load(first).key = 100

	err := skl.verify()
	require.Error(t, err)
	require.True(t, errors.Is(err, errXSklInvariantViolation))
	require.Contains(t, err.Error(), "not strictly increasing")
}

func TestXSkl_VerifyDetectsCountMismatch(t *testing.T) {
	skl := newCorruptibleSkl(t)
	skl.nodeLen += 2

	errs := multierr.Errors(skl.verify())
	// Both the level 0 count and the arena live slots disagree.
	require.Len(t, errs, 2)
	for _, err := range errs {
		require.True(t, errors.Is(err, errXSklInvariantViolation))
	}
}

func TestXSkl_VerifyDetectsBrokenTower(t *testing.T) {
	skl := newCorruptibleSkl(t)
	// The key 2 (level 3) disappears from the level 0 chain only.
	head := skl.arena.head()
	one := skl.arena.load(head.next(0))
	two := skl.arena.load(one.next(0))
	require.Equal(t, 2, two.key)
	one.setNext(0, two.next(0))

	err := skl.verify()
	require.Error(t, err)
	require.Contains(t, err.Error(), "misses a lower level")
}

func TestXSkl_VerifyDetectsEmptyTopLevel(t *testing.T) {
	skl := newCorruptibleSkl(t)
	skl.levels = skl.maxLevel

	err := skl.verify()
	require.Error(t, err)
	require.Contains(t, err.Error(), "top level 4 is empty")
}

func TestXSkl_InvariantCheckPanics(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.LogLevelDebug),
		xlog.WithXLoggerEncoder(xlog.JSON),
		xlog.WithXLoggerWriter(zapcore.AddSync(buf)),
	)
	skl := newTestSkl[int, int](t, 4, WithSklLogger[int, int](logger))
	require.Equal(t, Inserted, skl.Insert(1, 1))
	skl.nodeLen++

	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r)
			err, ok := r.(error)
			require.True(t, ok)
			require.True(t, errors.Is(err, errXSklInvariantViolation))
			var es infra.ErrorStack
			require.True(t, errors.As(err, &es))
			require.NotEmpty(t, es.Frames())
		}()
		skl.Insert(2, 2)
	}()

	var fatal map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["lvl"] == "ERROR" {
			fatal = entry
		}
	}
	require.NotNil(t, fatal)
	require.Equal(t, "[x-skl] invariant violation after insert", fatal["msg"])
	require.Equal(t, "x-skl", fatal["component"])
	require.NotEmpty(t, fatal["errorStack"])

	// The lock has been released by the deferred unlock.
	require.Equal(t, int64(3), skl.Len())
}

func TestXSkl_RemoveRecycleFailurePanics(t *testing.T) {
	skl := newCorruptibleSkl(t)
	// Free the slot behind the skip-list's back, the removal must not
	// release it a second time.
	ref := skl.arena.head().next(0)
	require.NoError(t, skl.arena.recycle(ref))
	skl.arena.load(ref).key = 1

	require.Panics(t, func() {
		skl.Remove(1)
	})
}
