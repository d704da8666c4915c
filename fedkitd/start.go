package fedkitd

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	fedkit "github.com/fedkit/fedkit"
	"github.com/fedkit/fedkit/coordinator"
	"github.com/fedkit/fedkit/coordinator/api"
	"github.com/fedkit/fedkit/coordinator/middleware"
	"github.com/fedkit/fedkit/participant"
	"github.com/fedkit/fedkit/pkg/aggregator"
	"github.com/fedkit/fedkit/pkg/controller"
	"github.com/fedkit/fedkit/pkg/mqtt"
	"github.com/fedkit/fedkit/pkg/prometheus"
	"github.com/fedkit/fedkit/pkg/server"
	httpserver "github.com/fedkit/fedkit/pkg/server/http"
	"github.com/fedkit/fedkit/pkg/storage"
)

const svcName = "coordinator"

type Config struct {
	LogLevel    string
	InstanceID  string
	MQTTAddress string
	MQTTQoS     uint8
	MQTTTimeout time.Duration
	MQTTID      string
	Experiment  fedkit.ExperimentConfig
	Server      server.Config
}

// StartCoordinator wires a simulated federation and runs it: it builds the
// participant registry from synthetic splits, starts the HTTP surface and
// kicks off the training run. It returns once the run finished and the
// servers drained, or on the first fatal error.
func StartCoordinator(ctx context.Context, cancel context.CancelFunc, cfg Config) error {
	g, ctx := errgroup.WithContext(ctx)

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to parse log level: %s", err.Error())
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	tracer := noop.NewTracerProvider().Tracer(svcName)

	var publisher coordinator.EventPublisher
	if cfg.MQTTAddress != "" {
		pub, err := mqtt.NewPublisher(cfg.MQTTAddress, cfg.MQTTQoS, cfg.MQTTID, "", "", cfg.MQTTTimeout, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize mqtt publisher: %s", err.Error())
		}
		defer func() {
			if err := pub.Disconnect(context.Background()); err != nil {
				logger.Error("error disconnecting mqtt publisher", slog.Any("error", err))
			}
		}()
		publisher = pub
	}

	exp := withExperimentDefaults(cfg.Experiment)
	rng := rand.New(rand.NewSource(exp.Seed))

	splits, validation := participant.SynthesizeSplits(rng, exp.Participants, exp.SamplesPerSplit, exp.FeatureDim)
	trainers := make([]participant.Trainer, exp.Participants)
	for i := range trainers {
		trainers[i] = &participant.SimTrainer{
			Split:        splits[i],
			LearningRate: exp.LearningRate,
		}
	}
	registry := participant.NewRegistry(trainers)
	evaluator := &participant.SimEvaluator{
		Validation: validation,
		Tolerance:  exp.Tolerance,
	}

	ctrl, err := buildController(exp, rng)
	if err != nil {
		return err
	}
	agg, err := buildAggregator(exp, evaluator, rng)
	if err != nil {
		return err
	}

	svc, err := coordinator.NewService(
		participant.LinearModel{Dim: exp.FeatureDim},
		registry,
		ctrl,
		agg,
		evaluator,
		storage.NewInMemoryStorage(),
		publisher,
		coordinator.Config{
			C:          exp.C,
			Epochs:     exp.Epochs,
			Sequential: exp.Sequential,
		},
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize coordinator: %s", err.Error())
	}
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency := prometheus.MakeMetrics(svcName, "api")
	svc = middleware.Metrics(counter, latency, svc)

	hs := httpserver.NewServer(ctx, cancel, svcName, cfg.Server, api.MakeHandler(svc, logger, cfg.InstanceID), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	g.Go(func() error {
		history, err := svc.Fit(ctx, exp.Rounds)
		if err != nil {
			return fmt.Errorf("training run failed: %w", err)
		}

		out, err := prettyjson.Marshal(history)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, color.GreenString("training run complete"))
		fmt.Fprintln(os.Stdout, string(out))

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service exited with error: %s", svcName, err))

		return err
	}

	return nil
}

func withExperimentDefaults(exp fedkit.ExperimentConfig) fedkit.ExperimentConfig {
	if exp.Participants == 0 {
		exp.Participants = 10
	}
	if exp.Rounds == 0 {
		exp.Rounds = 20
	}
	if exp.C == 0 {
		exp.C = 0.3
	}
	if exp.Epochs == 0 {
		exp.Epochs = 1
	}
	if exp.Controller == "" {
		exp.Controller = "cycle_random"
	}
	if exp.Aggregator == "" {
		exp.Aggregator = "fedavg"
	}
	if exp.SamplesPerSplit == 0 {
		exp.SamplesPerSplit = 100
	}
	if exp.FeatureDim == 0 {
		exp.FeatureDim = 4
	}
	if exp.LearningRate == 0 {
		exp.LearningRate = 0.05
	}
	if exp.Tolerance == 0 {
		exp.Tolerance = 0.1
	}

	return exp
}

func buildController(exp fedkit.ExperimentConfig, rng *rand.Rand) (controller.Controller, error) {
	switch exp.Controller {
	case "random":
		return controller.NewRandom(exp.Participants, rng), nil
	case "round_robin":
		return controller.NewRoundRobin(exp.Participants), nil
	case "cycle_random":
		return controller.NewCycleRandom(exp.Participants, rng), nil
	default:
		return nil, fmt.Errorf("unknown controller: %s", exp.Controller)
	}
}

func buildAggregator(exp fedkit.ExperimentConfig, evaluator aggregator.Evaluator, rng *rand.Rand) (aggregator.Aggregator, error) {
	switch exp.Aggregator {
	case "fedavg":
		return aggregator.NewFedAvg(), nil
	case "evo":
		return aggregator.NewEvo(evaluator, rng), nil
	case "identity":
		return aggregator.NewIdentity(), nil
	case "model_sum":
		return aggregator.NewModelSum(), nil
	default:
		return nil, fmt.Errorf("unknown aggregator: %s", exp.Aggregator)
	}
}
