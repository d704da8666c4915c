// Package coordinator drives the federated round loop: select participants,
// dispatch local training concurrently, aggregate the returned updates into
// new global weights and evaluate them against the validation set.
package coordinator

import (
	"context"
	"errors"

	"github.com/fedkit/fedkit/pkg/fl"
)

var (
	ErrNoParticipants = errors.New("at least one participant is required")
	ErrInvalidEpochs  = errors.New("local epochs must be positive")
	ErrInvalidRounds  = errors.New("number of rounds must be positive")
	ErrFitInProgress  = errors.New("a training run is already in progress")
)

type Service interface {
	// Fit runs numRounds federated rounds and returns the evaluation
	// history: one baseline record for the untrained model plus one record
	// per completed round. Any trainer or evaluator failure aborts the run.
	Fit(ctx context.Context, numRounds int) (fl.History, error)

	// History returns the records accumulated so far, including those of a
	// run still in progress.
	History(ctx context.Context) (fl.History, error)

	// Status reports the progress of the current or last run.
	Status(ctx context.Context) (Status, error)
}

// Status is a snapshot of run progress for the HTTP surface and round events.
type Status struct {
	RunID        string  `json:"run_id"`
	Round        int     `json:"round"`
	TotalRounds  int     `json:"total_rounds"`
	Participants int     `json:"participants"`
	Fitting      bool    `json:"fitting"`
	LastLoss     float64 `json:"last_loss"`
	LastAccuracy float64 `json:"last_accuracy"`
}

// EventPublisher pushes round lifecycle events to external consumers. A nil
// publisher disables events; publish failures are logged, never fatal.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, msg any) error
}
