// Package participant defines the external collaborators of the round loop:
// the local trainers, the model provider and the evaluator. The registry of
// participants is fixed at construction time; there is no dynamic join or
// leave.
package participant

import (
	"context"

	"github.com/0x6flab/namegenerator"

	"github.com/fedkit/fedkit/pkg/fl"
)

// Trainer performs local training. It receives a private copy of the global
// weights and must return an independently owned update without mutating its
// input. The returned int is the local sample count, 0 when unknown.
// Implementations must be safe to call concurrently with other trainers.
type Trainer interface {
	TrainRound(ctx context.Context, theta fl.Theta, epochs int) (fl.Theta, int, error)
}

// ModelProvider supplies the initial global weights, once, at coordinator
// construction.
type ModelProvider interface {
	InitModel() (fl.Theta, error)
}

// Evaluator scores weights against a fixed validation set.
type Evaluator interface {
	Evaluate(ctx context.Context, theta fl.Theta) (loss, accuracy float64, err error)
}

// Participant ties a registry index and a human-readable name to a trainer.
type Participant struct {
	ID      int
	Name    string
	Trainer Trainer
}

var namegen = namegenerator.NewGenerator()

// NewRegistry builds the fixed participant registry, one entry per trainer.
func NewRegistry(trainers []Trainer) []Participant {
	participants := make([]Participant, len(trainers))
	for i, tr := range trainers {
		participants[i] = Participant{
			ID:      i,
			Name:    namegen.Generate(),
			Trainer: tr,
		}
	}

	return participants
}
