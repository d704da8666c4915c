package coordinator_test

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedkit/fedkit/coordinator"
	"github.com/fedkit/fedkit/participant"
	"github.com/fedkit/fedkit/pkg/controller"
	"github.com/fedkit/fedkit/pkg/errors"
	"github.com/fedkit/fedkit/pkg/fl"
	"github.com/fedkit/fedkit/pkg/storage"
)

type constProvider struct {
	value float64
}

func (p constProvider) InitModel() (fl.Theta, error) {
	tensor, err := fl.NewTensor([]int{1}, []float64{p.value})
	if err != nil {
		return nil, err
	}

	return fl.Theta{tensor}, nil
}

// constTrainer ignores the incoming weights and returns a fixed model, which
// makes the expected aggregate easy to compute by hand.
type constTrainer struct {
	value      float64
	numSamples int
}

func (t constTrainer) TrainRound(_ context.Context, _ fl.Theta, _ int) (fl.Theta, int, error) {
	tensor, err := fl.NewTensor([]int{1}, []float64{t.value})
	if err != nil {
		return nil, 0, err
	}

	return fl.Theta{tensor}, t.numSamples, nil
}

type failingTrainer struct {
	err error
}

func (t failingTrainer) TrainRound(_ context.Context, _ fl.Theta, _ int) (fl.Theta, int, error) {
	return nil, 0, t.err
}

// gateTrainer signals entry and blocks until released, to hold a run open
// mid-flight.
type gateTrainer struct {
	entered chan struct{}
	release chan struct{}
}

func (t gateTrainer) TrainRound(_ context.Context, theta fl.Theta, _ int) (fl.Theta, int, error) {
	close(t.entered)
	<-t.release

	return theta.Clone(), 1, nil
}

// captureEvaluator records every evaluated model and reports a strictly
// decreasing loss so records are distinguishable per round.
type captureEvaluator struct {
	mu     sync.Mutex
	thetas []fl.Theta
}

func (e *captureEvaluator) Evaluate(_ context.Context, theta fl.Theta) (float64, float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.thetas = append(e.thetas, theta.Clone())

	return 1.0 / float64(len(e.thetas)), float64(len(e.thetas)), nil
}

func (e *captureEvaluator) last() fl.Theta {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.thetas[len(e.thetas)-1]
}

// fixedController always selects the same indices regardless of count.
type fixedController struct {
	indices []int
}

func (c fixedController) Indices(_ int) ([]int, error) {
	return c.indices, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *fakePublisher) Publish(_ context.Context, topic string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.topics = append(p.topics, topic)

	return nil
}

func (p *fakePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.topics...)
}

func registry(trainers ...participant.Trainer) []participant.Participant {
	return participant.NewRegistry(trainers)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNewService(t *testing.T) {
	cases := []struct {
		desc         string
		participants []participant.Participant
		cfg          coordinator.Config
		err          error
	}{
		{
			desc:         "valid configuration",
			participants: registry(constTrainer{value: 1}),
			cfg:          coordinator.Config{C: 1, Epochs: 1},
			err:          nil,
		},
		{
			desc:         "no participants",
			participants: nil,
			cfg:          coordinator.Config{C: 1, Epochs: 1},
			err:          coordinator.ErrNoParticipants,
		},
		{
			desc:         "fraction too large",
			participants: registry(constTrainer{value: 1}),
			cfg:          coordinator.Config{C: 1.5, Epochs: 1},
			err:          errors.ErrInvalidFraction,
		},
		{
			desc:         "zero fraction",
			participants: registry(constTrainer{value: 1}),
			cfg:          coordinator.Config{C: 0, Epochs: 1},
			err:          errors.ErrInvalidFraction,
		},
		{
			desc:         "zero epochs",
			participants: registry(constTrainer{value: 1}),
			cfg:          coordinator.Config{C: 1, Epochs: 0},
			err:          coordinator.ErrInvalidEpochs,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			svc, err := coordinator.NewService(
				constProvider{value: 0},
				tc.participants,
				fixedController{indices: []int{0}},
				nil,
				&captureEvaluator{},
				nil,
				nil,
				tc.cfg,
				discardLogger(),
			)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)

				return
			}
			require.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestFitHistoryLength(t *testing.T) {
	evaluator := &captureEvaluator{}
	svc, err := coordinator.NewService(
		constProvider{value: 0},
		registry(constTrainer{value: 1}, constTrainer{value: 2}),
		fixedController{indices: []int{0, 1}},
		nil,
		evaluator,
		nil,
		nil,
		coordinator.Config{C: 1, Epochs: 1},
		discardLogger(),
	)
	require.NoError(t, err)

	const numRounds = 3

	history, err := svc.Fit(context.Background(), numRounds)
	require.NoError(t, err)

	require.Len(t, history, numRounds+1)
	for i, rec := range history {
		assert.Equal(t, i, rec.Round)
	}
	assert.Greater(t, history[0].Loss, history[numRounds].Loss)
}

func TestFitAggregatesSelected(t *testing.T) {
	evaluator := &captureEvaluator{}
	trainers := registry(
		constTrainer{value: 10},
		constTrainer{value: 2},
		constTrainer{value: 10},
		constTrainer{value: 4},
	)

	// Only participants 1 and 3 are selected, so the uniform average of
	// their models is 3 and the outliers never contribute.
	svc, err := coordinator.NewService(
		constProvider{value: 0},
		trainers,
		fixedController{indices: []int{1, 3}},
		nil,
		evaluator,
		nil,
		nil,
		coordinator.Config{C: 0.5, Epochs: 1},
		discardLogger(),
	)
	require.NoError(t, err)

	_, err = svc.Fit(context.Background(), 1)
	require.NoError(t, err)

	got := evaluator.last()
	require.Len(t, got, 1)
	assert.InDelta(t, 3.0, got[0].Data[0], 1e-12)
}

func TestFitTrainerFailure(t *testing.T) {
	trainErr := fmt.Errorf("device offline")
	trainers := registry(
		constTrainer{value: 1},
		failingTrainer{err: trainErr},
	)

	svc, err := coordinator.NewService(
		constProvider{value: 0},
		trainers,
		fixedController{indices: []int{0, 1}},
		nil,
		&captureEvaluator{},
		nil,
		nil,
		coordinator.Config{C: 1, Epochs: 1},
		discardLogger(),
	)
	require.NoError(t, err)

	_, err = svc.Fit(context.Background(), 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, trainErr)
	assert.Contains(t, err.Error(), "round 1/2")
	assert.Contains(t, err.Error(), "participant 1")

	// The baseline record survives an aborted run.
	history, err := svc.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 0, history[0].Round)
}

func TestFitInvalidRounds(t *testing.T) {
	svc, err := coordinator.NewService(
		constProvider{value: 0},
		registry(constTrainer{value: 1}),
		fixedController{indices: []int{0}},
		nil,
		&captureEvaluator{},
		nil,
		nil,
		coordinator.Config{C: 1, Epochs: 1},
		discardLogger(),
	)
	require.NoError(t, err)

	_, err = svc.Fit(context.Background(), 0)
	assert.ErrorIs(t, err, coordinator.ErrInvalidRounds)
}

func TestFitInProgress(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	svc, err := coordinator.NewService(
		constProvider{value: 0},
		registry(gateTrainer{entered: entered, release: release}),
		fixedController{indices: []int{0}},
		nil,
		&captureEvaluator{},
		nil,
		nil,
		coordinator.Config{C: 1, Epochs: 1},
		discardLogger(),
	)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Fit(context.Background(), 1)
		done <- err
	}()
	<-entered

	_, err = svc.Fit(context.Background(), 1)
	assert.ErrorIs(t, err, coordinator.ErrFitInProgress)

	close(release)
	require.NoError(t, <-done)
}

func TestFitSequentialMatchesConcurrent(t *testing.T) {
	run := func(sequential bool) fl.Theta {
		evaluator := &captureEvaluator{}
		svc, err := coordinator.NewService(
			constProvider{value: 0},
			registry(constTrainer{value: 2, numSamples: 1}, constTrainer{value: 8, numSamples: 3}),
			fixedController{indices: []int{0, 1}},
			nil,
			evaluator,
			nil,
			nil,
			coordinator.Config{C: 1, Epochs: 1, Sequential: sequential},
			discardLogger(),
		)
		require.NoError(t, err)

		_, err = svc.Fit(context.Background(), 2)
		require.NoError(t, err)

		return evaluator.last()
	}

	concurrent := run(false)
	sequential := run(true)

	require.Len(t, concurrent, 1)
	assert.Equal(t, concurrent, sequential)
	// Sample-weighted average of 2 (weight 1) and 8 (weight 3).
	assert.InDelta(t, 6.5, concurrent[0].Data[0], 1e-12)
}

func TestFitCheckpoints(t *testing.T) {
	checkpoints := storage.NewInMemoryStorage()
	svc, err := coordinator.NewService(
		constProvider{value: 0},
		registry(constTrainer{value: 4}),
		fixedController{indices: []int{0}},
		nil,
		&captureEvaluator{},
		checkpoints,
		nil,
		coordinator.Config{C: 1, Epochs: 1},
		discardLogger(),
	)
	require.NoError(t, err)

	const numRounds = 2

	_, err = svc.Fit(context.Background(), numRounds)
	require.NoError(t, err)

	stored, total, err := checkpoints.List(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(numRounds+1), total)
	require.Len(t, stored, numRounds+1)

	latest, err := checkpoints.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, numRounds, latest.Round)
	assert.InDelta(t, 4.0, latest.Theta[0].Data[0], 1e-12)
}

func TestFitPublishesRoundEvents(t *testing.T) {
	publisher := &fakePublisher{}
	svc, err := coordinator.NewService(
		constProvider{value: 0},
		registry(constTrainer{value: 1}),
		fixedController{indices: []int{0}},
		nil,
		&captureEvaluator{},
		nil,
		publisher,
		coordinator.Config{C: 1, Epochs: 1},
		discardLogger(),
	)
	require.NoError(t, err)

	_, err = svc.Fit(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"fl/rounds/start", "fl/rounds/complete",
		"fl/rounds/start", "fl/rounds/complete",
	}, publisher.published())
}

func TestFitReproducible(t *testing.T) {
	run := func() (fl.History, fl.Theta) {
		evaluator := &captureEvaluator{}
		svc, err := coordinator.NewService(
			constProvider{value: 0},
			registry(constTrainer{value: 1}, constTrainer{value: 3}, constTrainer{value: 5}),
			controller.NewCycleRandom(3, rand.New(rand.NewSource(42))),
			nil,
			evaluator,
			nil,
			nil,
			coordinator.Config{C: 2.0 / 3.0, Epochs: 1},
			discardLogger(),
		)
		require.NoError(t, err)

		history, err := svc.Fit(context.Background(), 3)
		require.NoError(t, err)

		return history, evaluator.last()
	}

	firstHistory, firstTheta := run()
	secondHistory, secondTheta := run()

	assert.Equal(t, firstHistory, secondHistory)
	assert.Equal(t, firstTheta, secondTheta)
}

func TestStatus(t *testing.T) {
	svc, err := coordinator.NewService(
		constProvider{value: 0},
		registry(constTrainer{value: 1}, constTrainer{value: 2}),
		fixedController{indices: []int{0, 1}},
		nil,
		&captureEvaluator{},
		nil,
		nil,
		coordinator.Config{C: 1, Epochs: 1},
		discardLogger(),
	)
	require.NoError(t, err)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Fitting)
	assert.Equal(t, 2, status.Participants)
	assert.Zero(t, status.Round)

	_, err = svc.Fit(context.Background(), 3)
	require.NoError(t, err)

	status, err = svc.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Fitting)
	assert.Equal(t, 3, status.Round)
	assert.Equal(t, 3, status.TotalRounds)
	assert.NotEmpty(t, status.RunID)
	assert.NotZero(t, status.LastLoss)
}
