// Package aggregator combines per-participant weight updates into the next
// global model. All variants require structurally identical inputs and keep
// summation order deterministic so a run is reproducible for a fixed seed.
package aggregator

import (
	"context"
	"fmt"

	"github.com/fedkit/fedkit/pkg/errors"
	"github.com/fedkit/fedkit/pkg/fl"
)

type Aggregator interface {
	Aggregate(ctx context.Context, updates []fl.Update) (fl.Theta, error)
}

// Evaluator scores a candidate weight set against the validation set. It is
// an external collaborator of the evolutionary aggregator.
type Evaluator interface {
	Evaluate(ctx context.Context, theta fl.Theta) (loss, accuracy float64, err error)
}

// weightedAverage computes sum(theta[i] * weighting[i]) / sum(weighting)
// tensor-wise. Accumulation is sequential in input order; no renormalization
// happens beyond the final divide.
func weightedAverage(updates []fl.Update, weighting []float64) (fl.Theta, error) {
	if len(updates) == 0 {
		return nil, errors.ErrNoUpdates
	}

	var sum float64
	for _, w := range weighting {
		sum += w
	}
	if sum == 0 {
		return nil, errors.ErrZeroWeighting
	}

	avg := updates[0].Theta.Clone()
	for _, tensor := range avg {
		for i := range tensor.Data {
			tensor.Data[i] *= weighting[0]
		}
	}

	for u := 1; u < len(updates); u++ {
		if !updates[u].Theta.ShapeEqual(avg) {
			return nil, fmt.Errorf("%w: participant %d", errors.ErrShapeMismatch, updates[u].ParticipantID)
		}
		for l, tensor := range updates[u].Theta {
			for i := range tensor.Data {
				avg[l].Data[i] += weighting[u] * tensor.Data[i]
			}
		}
	}

	for _, tensor := range avg {
		for i := range tensor.Data {
			tensor.Data[i] /= sum
		}
	}

	return avg, nil
}
