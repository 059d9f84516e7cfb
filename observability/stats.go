package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xskl/xlog"
)

var (
	once sync.Once
)

type xSklStatsProvider struct {
	ctx    context.Context
	mp     *metric.MeterProvider
	logger xlog.XLogger
}

func (p *xSklStatsProvider) waitForShutdown() {
	if p == nil || p.mp == nil {
		return
	}
	go func() {
		<-p.ctx.Done()
		if err := p.mp.Shutdown(context.Background()); err != nil && p.logger != nil {
			p.logger.Error(err, "[observability] meter provider shutdown failed")
		}
	}()
}

// InitXSklStats installs mp as the global otel meter provider, which the
// skip-lists created by WithSklStats without an explicit provider use.
// The provider is shut down once ctx is done. Only the first call takes
// effect, it reports whether mp has been installed. A nil ctx is
// rejected, the provider would never be shut down.
func InitXSklStats(ctx context.Context, mp *metric.MeterProvider, logger xlog.XLogger) bool {
	if ctx == nil || mp == nil {
		return false
	}
	installed := false
	once.Do(func() {
		otel.SetMeterProvider(mp)
		p := &xSklStatsProvider{
			ctx:    ctx,
			mp:     mp,
			logger: logger,
		}
		p.waitForShutdown()
		installed = true
	})
	return installed
}
