package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/fedkit/fedkit/coordinator"
	"github.com/fedkit/fedkit/pkg/fl"
)

var _ coordinator.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    coordinator.Service
}

func Logging(logger *slog.Logger, svc coordinator.Service) coordinator.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Fit(ctx context.Context, numRounds int) (resp fl.History, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("num_rounds", numRounds),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Fit failed", args...)

			return
		}
		if len(resp) > 0 {
			last := resp[len(resp)-1]
			args = append(args,
				slog.Float64("loss", last.Loss),
				slog.Float64("accuracy", last.Accuracy),
			)
		}
		lm.logger.Info("Fit completed successfully", args...)
	}(time.Now())

	return lm.svc.Fit(ctx, numRounds)
}

func (lm *loggingMiddleware) History(ctx context.Context) (resp fl.History, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("records", len(resp)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get history failed", args...)

			return
		}
		lm.logger.Info("Get history completed successfully", args...)
	}(time.Now())

	return lm.svc.History(ctx)
}

func (lm *loggingMiddleware) Status(ctx context.Context) (resp coordinator.Status, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("run",
				slog.String("id", resp.RunID),
				slog.Int("round", resp.Round),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get status failed", args...)

			return
		}
		lm.logger.Info("Get status completed successfully", args...)
	}(time.Now())

	return lm.svc.Status(ctx)
}
