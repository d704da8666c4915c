package middleware

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"

	"github.com/fedkit/fedkit/coordinator"
	"github.com/fedkit/fedkit/pkg/fl"
)

var _ coordinator.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     coordinator.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc coordinator.Service) coordinator.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Fit(ctx context.Context, numRounds int) (fl.History, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "fit").Add(1)
		mm.latency.With("method", "fit").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Fit(ctx, numRounds)
}

func (mm *metricsMiddleware) History(ctx context.Context) (fl.History, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "history").Add(1)
		mm.latency.With("method", "history").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.History(ctx)
}

func (mm *metricsMiddleware) Status(ctx context.Context) (coordinator.Status, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "status").Add(1)
		mm.latency.With("method", "status").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Status(ctx)
}
