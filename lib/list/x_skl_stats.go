package list

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	XSklStatsName = "xskl/skl"
)

// Every stats-enabled skip-list gets its own id, so the lists sharing a
// meter (same provider and name) still report separate series.
var xSklStatsID atomic.Int64

type xSklStats struct {
	id           int64
	insertCount  metric.Int64Counter
	removeCount  metric.Int64Counter
	updateCount  metric.Int64Counter
	searchCount  metric.Int64Counter
	elementCount metric.Int64UpDownCounter
	levels       metric.Int64ObservableGauge
	levelsReg    metric.Registration
	detachOnce   sync.Once

	instanceAttrs      metric.MeasurementOption
	insertedAttrs      metric.MeasurementOption
	alreadyExistsAttrs metric.MeasurementOption
	removedAttrs       metric.MeasurementOption
	notFoundAttrs      metric.MeasurementOption
	updatedAttrs       metric.MeasurementOption
	updateMissAttrs    metric.MeasurementOption
	searchHitAttrs     metric.MeasurementOption
	searchMissAttrs    metric.MeasurementOption
}

func (stats *xSklStats) recordInsert(status InsertStatus) {
	if stats == nil {
		return
	}
	if status == Inserted {
		stats.insertCount.Add(context.Background(), 1, stats.insertedAttrs)
		stats.elementCount.Add(context.Background(), 1, stats.instanceAttrs)
		return
	}
	stats.insertCount.Add(context.Background(), 1, stats.alreadyExistsAttrs)
}

func (stats *xSklStats) recordRemove(status RemoveStatus) {
	if stats == nil {
		return
	}
	if status == Removed {
		stats.removeCount.Add(context.Background(), 1, stats.removedAttrs)
		stats.elementCount.Add(context.Background(), -1, stats.instanceAttrs)
		return
	}
	stats.removeCount.Add(context.Background(), 1, stats.notFoundAttrs)
}

func (stats *xSklStats) recordUpdate(status UpdateStatus) {
	if stats == nil {
		return
	}
	if status == Updated {
		stats.updateCount.Add(context.Background(), 1, stats.updatedAttrs)
		return
	}
	stats.updateCount.Add(context.Background(), 1, stats.updateMissAttrs)
}

func (stats *xSklStats) recordSearch(hit bool) {
	if stats == nil {
		return
	}
	if hit {
		stats.searchCount.Add(context.Background(), 1, stats.searchHitAttrs)
		return
	}
	stats.searchCount.Add(context.Background(), 1, stats.searchMissAttrs)
}

func (stats *xSklStats) recordRelease(count int64) {
	if stats == nil || count == 0 {
		return
	}
	stats.elementCount.Add(context.Background(), -count, stats.instanceAttrs)
}

// detach unregisters the levels callback, after which the provider no
// longer references the skip-list.
// It must be called without the skip-list lock, because a collection
// holds the provider lock while the callback waits for the skip-list lock.
func (stats *xSklStats) detach() error {
	if stats == nil {
		return nil
	}
	var err error
	stats.detachOnce.Do(func() {
		err = stats.levelsReg.Unregister()
	})
	return err
}

// newXSklStats registers the instruments. The levels gauge is observed
// through levelsFn at collection time until detach.
func newXSklStats(mp metric.MeterProvider, name string, levelsFn func() int64) *xSklStats {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if len(name) == 0 {
		name = "default"
	}
	var (
		id       = xSklStatsID.Add(1)
		meter    = mp.Meter(fmt.Sprintf("%s/%s", XSklStatsName, name))
		instance = []attribute.KeyValue{
			attribute.String("xskl.name", name),
			attribute.Int64("xskl.id", id),
		}
		withAttrs = func(kvs ...attribute.KeyValue) metric.MeasurementOption {
			return metric.WithAttributeSet(attribute.NewSet(append(kvs, instance...)...))
		}
	)
	stats := &xSklStats{
		id: id,

		insertCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xskl.insert.count",
			metric.WithDescription("The number of insert calls, by status."),
		)),
		removeCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xskl.remove.count",
			metric.WithDescription("The number of remove calls, by status."),
		)),
		updateCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xskl.update.count",
			metric.WithDescription("The number of update calls, by status."),
		)),
		searchCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xskl.search.count",
			metric.WithDescription("The number of search calls, by hit or miss."),
		)),
		elementCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"xskl.element.count",
			metric.WithDescription("The number of elements in the skip-list."),
		)),
		levels: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
			"xskl.levels",
			metric.WithDescription("The highest level holding an element."),
		)),

		instanceAttrs:      withAttrs(),
		insertedAttrs:      withAttrs(attribute.String("xskl.status", Inserted.String())),
		alreadyExistsAttrs: withAttrs(attribute.String("xskl.status", AlreadyExists.String())),
		removedAttrs:       withAttrs(attribute.String("xskl.status", Removed.String())),
		notFoundAttrs:      withAttrs(attribute.String("xskl.status", NotFound.String())),
		updatedAttrs:       withAttrs(attribute.String("xskl.status", Updated.String())),
		updateMissAttrs:    withAttrs(attribute.String("xskl.status", UpdateNotFound.String())),
		searchHitAttrs:     withAttrs(attribute.Bool("xskl.search.hit", true)),
		searchMissAttrs:    withAttrs(attribute.Bool("xskl.search.hit", false)),
	}
	stats.levelsReg = lo.Must[metric.Registration](meter.RegisterCallback(
		func(ctx context.Context, ob metric.Observer) error {
			ob.ObserveInt64(stats.levels, levelsFn(), stats.instanceAttrs)
			return nil
		},
		stats.levels,
	))
	return stats
}
