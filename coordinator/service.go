package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fedkit/fedkit/participant"
	"github.com/fedkit/fedkit/pkg/aggregator"
	"github.com/fedkit/fedkit/pkg/controller"
	"github.com/fedkit/fedkit/pkg/errors"
	"github.com/fedkit/fedkit/pkg/fl"
	"github.com/fedkit/fedkit/pkg/storage"
)

const (
	topicRoundStart    = "fl/rounds/start"
	topicRoundComplete = "fl/rounds/complete"
)

// Config carries the training hyperparameters the coordinator consumes.
type Config struct {
	// C is the fraction of participants selected each round, in (0, 1].
	C float64
	// Epochs is the number of local epochs a participant trains per round.
	Epochs int
	// Sequential dispatches trainers one at a time instead of concurrently.
	// The round semantics are identical; only scheduling changes.
	Sequential bool
}

type service struct {
	runID        string
	participants []participant.Participant
	controller   controller.Controller
	aggregator   aggregator.Aggregator
	evaluator    participant.Evaluator
	checkpoints  storage.Storage
	publisher    EventPublisher
	cfg          Config
	logger       *slog.Logger

	// theta is touched only by the goroutine running Fit: snapshots are
	// taken before dispatch and the replacement happens after the round
	// barrier. history and status fields are additionally read by the HTTP
	// surface, so they are guarded.
	theta fl.Theta

	mu          sync.RWMutex
	history     fl.History
	round       int
	totalRounds int
	fitting     bool
}

// NewService builds a coordinator over a fixed participant registry. The
// initial global weights come from the model provider; a nil agg selects
// uniform weighted averaging. checkpoints and publisher may be nil to
// disable checkpointing and round events.
func NewService(
	provider participant.ModelProvider,
	participants []participant.Participant,
	ctrl controller.Controller,
	agg aggregator.Aggregator,
	evaluator participant.Evaluator,
	checkpoints storage.Storage,
	publisher EventPublisher,
	cfg Config,
	logger *slog.Logger,
) (Service, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if cfg.C <= 0 || cfg.C > 1 {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidFraction, cfg.C)
	}
	if cfg.Epochs < 1 {
		return nil, ErrInvalidEpochs
	}
	if agg == nil {
		agg = aggregator.NewFedAvg()
	}

	theta, err := provider.InitModel()
	if err != nil {
		return nil, fmt.Errorf("initializing model: %w", err)
	}

	return &service{
		runID:        uuid.NewString(),
		participants: participants,
		controller:   ctrl,
		aggregator:   agg,
		evaluator:    evaluator,
		checkpoints:  checkpoints,
		publisher:    publisher,
		cfg:          cfg,
		logger:       logger,
		theta:        theta,
	}, nil
}

func (svc *service) Fit(ctx context.Context, numRounds int) (fl.History, error) {
	if numRounds < 1 {
		return nil, ErrInvalidRounds
	}
	if err := svc.beginRun(numRounds); err != nil {
		return nil, err
	}
	defer svc.endRun()

	// Baseline: evaluate the untrained global model so history carries the
	// starting point as round 0.
	loss, accuracy, err := svc.evaluator.Evaluate(ctx, svc.theta)
	if err != nil {
		return nil, fmt.Errorf("baseline evaluation: %w", err)
	}
	svc.record(fl.Record{Round: 0, Loss: loss, Accuracy: accuracy})
	svc.checkpoint(ctx, 0, loss, accuracy)

	for r := 1; r <= numRounds; r++ {
		if err := svc.fitRound(ctx, r, numRounds); err != nil {
			return nil, fmt.Errorf("round %d/%d: %w", r, numRounds, err)
		}
	}

	return svc.History(ctx)
}

func (svc *service) fitRound(ctx context.Context, round, numRounds int) error {
	count, err := controller.AbsCount(svc.cfg.C, len(svc.participants))
	if err != nil {
		return err
	}

	indices, err := svc.controller.Indices(count)
	if err != nil {
		return err
	}

	svc.logger.InfoContext(ctx, "Round started",
		slog.String("run_id", svc.runID),
		slog.Int("round", round),
		slog.Int("total_rounds", numRounds),
		slog.Any("participants", indices))
	svc.publish(ctx, topicRoundStart, map[string]any{
		"run_id":       svc.runID,
		"round":        round,
		"participants": indices,
	})

	var updates []fl.Update
	if svc.cfg.Sequential {
		updates, err = svc.trainSequentially(ctx, indices)
	} else {
		updates, err = svc.trainConcurrently(ctx, indices)
	}
	if err != nil {
		return err
	}

	theta, err := svc.aggregator.Aggregate(ctx, updates)
	if err != nil {
		return err
	}
	svc.theta = theta

	loss, accuracy, err := svc.evaluator.Evaluate(ctx, svc.theta)
	if err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}

	svc.record(fl.Record{Round: round, Loss: loss, Accuracy: accuracy})
	svc.checkpoint(ctx, round, loss, accuracy)

	// The event carries the full model snapshot so external consumers (a
	// model registry, downstream experiments) need not poll the HTTP API.
	snapshot, err := fl.Marshal(svc.theta)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	svc.publish(ctx, topicRoundComplete, map[string]any{
		"run_id":   svc.runID,
		"round":    round,
		"loss":     loss,
		"accuracy": accuracy,
		"model":    snapshot,
	})

	return nil
}

// trainConcurrently fans one trainer call per selected participant out into
// its own goroutine and blocks until every one of them returns. Each trainer
// receives a private deep copy of the global weights; the errgroup barrier
// propagates the first failure and fails the whole round.
func (svc *service) trainConcurrently(ctx context.Context, indices []int) ([]fl.Update, error) {
	g, ctx := errgroup.WithContext(ctx)
	updates := make([]fl.Update, len(indices))

	for i, idx := range indices {
		p := svc.participants[idx]
		snapshot := svc.theta.Clone()

		g.Go(func() error {
			theta, numSamples, err := p.Trainer.TrainRound(ctx, snapshot, svc.cfg.Epochs)
			if err != nil {
				return fmt.Errorf("participant %d (%s): %w", p.ID, p.Name, err)
			}
			updates[i] = fl.Update{ParticipantID: p.ID, Theta: theta, NumSamples: numSamples}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return updates, nil
}

func (svc *service) trainSequentially(ctx context.Context, indices []int) ([]fl.Update, error) {
	updates := make([]fl.Update, len(indices))

	for i, idx := range indices {
		p := svc.participants[idx]

		theta, numSamples, err := p.Trainer.TrainRound(ctx, svc.theta.Clone(), svc.cfg.Epochs)
		if err != nil {
			return nil, fmt.Errorf("participant %d (%s): %w", p.ID, p.Name, err)
		}
		updates[i] = fl.Update{ParticipantID: p.ID, Theta: theta, NumSamples: numSamples}
	}

	return updates, nil
}

func (svc *service) History(_ context.Context) (fl.History, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	history := make(fl.History, len(svc.history))
	copy(history, svc.history)

	return history, nil
}

func (svc *service) Status(_ context.Context) (Status, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	status := Status{
		RunID:        svc.runID,
		Round:        svc.round,
		TotalRounds:  svc.totalRounds,
		Participants: len(svc.participants),
		Fitting:      svc.fitting,
	}
	if len(svc.history) > 0 {
		last := svc.history[len(svc.history)-1]
		status.LastLoss = last.Loss
		status.LastAccuracy = last.Accuracy
	}

	return status, nil
}

func (svc *service) beginRun(numRounds int) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.fitting {
		return ErrFitInProgress
	}
	svc.fitting = true
	svc.totalRounds = numRounds
	svc.round = 0
	svc.history = nil

	return nil
}

func (svc *service) endRun() {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.fitting = false
}

func (svc *service) record(rec fl.Record) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.history = append(svc.history, rec)
	svc.round = rec.Round
}

func (svc *service) checkpoint(ctx context.Context, round int, loss, accuracy float64) {
	if svc.checkpoints == nil {
		return
	}

	cp := storage.Checkpoint{
		Round:     round,
		Theta:     svc.theta,
		Loss:      loss,
		Accuracy:  accuracy,
		CreatedAt: time.Now(),
	}
	if err := svc.checkpoints.Create(ctx, cp); err != nil {
		svc.logger.WarnContext(ctx, "Failed to store checkpoint",
			slog.Int("round", round), slog.Any("error", err))
	}
}

func (svc *service) publish(ctx context.Context, topic string, msg any) {
	if svc.publisher == nil {
		return
	}

	if err := svc.publisher.Publish(ctx, topic, msg); err != nil {
		svc.logger.WarnContext(ctx, "Failed to publish round event",
			slog.String("topic", topic), slog.Any("error", err))
	}
}
