package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fedkit/fedkit/coordinator"
	"github.com/fedkit/fedkit/pkg/fl"
)

var _ coordinator.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    coordinator.Service
}

func Tracing(tracer trace.Tracer, svc coordinator.Service) coordinator.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) Fit(ctx context.Context, numRounds int) (fl.History, error) {
	ctx, span := tm.tracer.Start(ctx, "fit", trace.WithAttributes(
		attribute.Int("num_rounds", numRounds),
	))
	defer span.End()

	return tm.svc.Fit(ctx, numRounds)
}

func (tm *tracing) History(ctx context.Context) (fl.History, error) {
	ctx, span := tm.tracer.Start(ctx, "history")
	defer span.End()

	return tm.svc.History(ctx)
}

func (tm *tracing) Status(ctx context.Context) (coordinator.Status, error) {
	ctx, span := tm.tracer.Start(ctx, "status")
	defer span.End()

	return tm.svc.Status(ctx)
}
