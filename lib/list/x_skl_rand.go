package list

// References:
// https://www.cl.cam.ac.uk/teaching/0506/Algorithms/skiplists.pdf

import (
	saferand "crypto/rand"
	"encoding/binary"
	randv2 "math/rand/v2"
)

// SklRand draws the level of a new node.
// The skip-list clamps the result into [1, maxLevel].
// It is always called with the skip-list lock held, so the
// implementation doesn't need to be concurrent safe.
type SklRand func(maxLevel int32) int32

// newCoinFlipSklRand starts at level 1 and flips a fair coin until
// the first tails or maxLevel, i.e. P(level >= l+1 | level >= l) = 1/2.
// A random uint64 feeds 64 flips, instead of drawing a number per flip.
func newCoinFlipSklRand(src randv2.Source) SklRand {
	var (
		r    = randv2.New(src)
		bits uint64
		left uint8
	)
	flip := func() bool {
		if left == 0 {
			bits, left = r.Uint64(), 64
		}
		heads := bits&0x1 == 0x1
		bits >>= 1
		left--
		return heads
	}
	return func(maxLevel int32) int32 {
		level := int32(1)
		for level < maxLevel && flip() {
			level++
		}
		return level
	}
}

// newSeededSource is deterministic, so the tests are able to assert
// the exact leveling of a sequence of inserts.
func newSeededSource(seed uint64) randv2.Source {
	return randv2.NewPCG(seed, seed^0x9E3779B97F4A7C15)
}

// newSafeSeededSource seeds the generator from the OS entropy, the
// default of a skip-list without an explicit seed.
func newSafeSeededSource() randv2.Source {
	return randv2.NewPCG(cryptoRandUint64(), cryptoRandUint64())
}

func cryptoRandUint64() uint64 {
	randUint64 := [8]byte{}
	if _, err := saferand.Read(randUint64[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(randUint64[:])
}
