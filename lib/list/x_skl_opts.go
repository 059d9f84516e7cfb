package list

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xskl/lib/infra"
	"github.com/benz9527/xskl/xlog"
)

type SklOption[K infra.OrderedKey, V any] func(*sklOptions[K, V]) error

type sklOptions[K infra.OrderedKey, V any] struct {
	keyComparator  infra.OrderedKeyComparator[K]
	rand           SklRand
	randSeed       *uint64
	logger         xlog.XLogger
	meterProvider  metric.MeterProvider
	statsName      string
	statsEnabled   bool
	invariantCheck bool
	capHint        int
}

// WithSklKeyComparator overrides the natural ascending key order.
func WithSklKeyComparator[K infra.OrderedKey, V any](cmp infra.OrderedKeyComparator[K]) SklOption[K, V] {
	return func(opts *sklOptions[K, V]) error {
		if cmp == nil {
			return ErrXSklNilComparator
		}
		opts.keyComparator = cmp
		return nil
	}
}

// WithSklRandSeed makes the leveling deterministic.
// Without it the generator is seeded from crypto/rand.
func WithSklRandSeed[K infra.OrderedKey, V any](seed uint64) SklOption[K, V] {
	return func(opts *sklOptions[K, V]) error {
		opts.randSeed = &seed
		return nil
	}
}

// WithSklRandLevelGen replaces the coin flip leveling entirely.
// It takes precedence over WithSklRandSeed.
func WithSklRandLevelGen[K infra.OrderedKey, V any](gen SklRand) SklOption[K, V] {
	return func(opts *sklOptions[K, V]) error {
		if gen == nil {
			return ErrXSklNilRand
		}
		opts.rand = gen
		return nil
	}
}

func WithSklLogger[K infra.OrderedKey, V any](logger xlog.XLogger) SklOption[K, V] {
	return func(opts *sklOptions[K, V]) error {
		opts.logger = logger
		return nil
	}
}

// WithSklStats enables the OpenTelemetry instruments under the meter
// "xskl/skl/<name>". Every series carries the xskl.name and a per-list
// xskl.id. The provider keeps the skip-list reachable through the levels
// gauge until Release.
func WithSklStats[K infra.OrderedKey, V any](name string) SklOption[K, V] {
	return func(opts *sklOptions[K, V]) error {
		opts.statsEnabled = true
		opts.statsName = name
		return nil
	}
}

// WithSklMeterProvider sets the provider of the stats instruments.
// The global otel provider is used by default.
func WithSklMeterProvider[K infra.OrderedKey, V any](mp metric.MeterProvider) SklOption[K, V] {
	return func(opts *sklOptions[K, V]) error {
		opts.meterProvider = mp
		return nil
	}
}

// WithSklInvariantCheck validates the whole structure after every
// mutation and panics on violation. O(N) per mutation, debug only.
func WithSklInvariantCheck[K infra.OrderedKey, V any]() SklOption[K, V] {
	return func(opts *sklOptions[K, V]) error {
		opts.invariantCheck = true
		return nil
	}
}

// WithSklCapacity pre-allocates the node arena.
func WithSklCapacity[K infra.OrderedKey, V any](capacity int) SklOption[K, V] {
	return func(opts *sklOptions[K, V]) error {
		opts.capHint = capacity
		return nil
	}
}
