package aggregator

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/fedkit/fedkit/pkg/errors"
	"github.com/fedkit/fedkit/pkg/fl"
)

const (
	defNumCandidates = 3
	weightingLow     = 0.5
	weightingHigh    = 1.5
)

type evo struct {
	evaluator     Evaluator
	rng           *rand.Rand
	numCandidates int

	// elite is the best weighting found so far; it survives across rounds
	// and seeds the first candidate of the next call.
	elite []float64
}

// NewEvo returns the evolutionary aggregator. Each call draws random
// weightings in [0.5, 1.5), averages the updates under each weighting,
// scores every candidate on the validation set through the injected
// evaluator and returns the candidate with the lowest loss.
func NewEvo(evaluator Evaluator, rng *rand.Rand) Aggregator {
	return &evo{
		evaluator:     evaluator,
		rng:           rng,
		numCandidates: defNumCandidates,
	}
}

func (e *evo) Aggregate(ctx context.Context, updates []fl.Update) (fl.Theta, error) {
	if len(updates) == 0 {
		return nil, errors.ErrNoUpdates
	}

	var (
		best     fl.Theta
		bestLoss float64
		bestW    []float64
	)

	for c := 0; c < e.numCandidates; c++ {
		weighting := e.candidateWeighting(c, len(updates))

		candidate, err := weightedAverage(updates, weighting)
		if err != nil {
			return nil, err
		}

		loss, _, err := e.evaluator.Evaluate(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("evaluating candidate %d: %w", c, err)
		}

		if best == nil || loss < bestLoss {
			best = candidate
			bestLoss = loss
			bestW = weighting
		}
	}

	e.elite = bestW

	return best, nil
}

func (e *evo) candidateWeighting(candidate, size int) []float64 {
	if candidate == 0 && len(e.elite) == size {
		return e.elite
	}

	weighting := make([]float64, size)
	for i := range weighting {
		weighting[i] = weightingLow + e.rng.Float64()*(weightingHigh-weightingLow)
	}

	return weighting
}
