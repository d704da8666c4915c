package aggregator

import (
	"context"

	"github.com/fedkit/fedkit/pkg/errors"
	"github.com/fedkit/fedkit/pkg/fl"
)

type fedAvg struct{}

// NewFedAvg returns the default aggregator: weighted federated averaging as
// proposed by McMahan et al. (https://arxiv.org/abs/1602.05629). Updates are
// weighted by their local sample counts when every update carries one;
// otherwise the weighting is uniform.
func NewFedAvg() Aggregator {
	return &fedAvg{}
}

func (f *fedAvg) Aggregate(_ context.Context, updates []fl.Update) (fl.Theta, error) {
	if len(updates) == 0 {
		return nil, errors.ErrNoUpdates
	}

	return weightedAverage(updates, weighting(updates))
}

// weighting prefers sample counts and falls back to uniform scalars when any
// update lacks one, so a mixed round never silently drops a participant.
func weighting(updates []fl.Update) []float64 {
	w := make([]float64, len(updates))

	sampleCounted := true
	for _, u := range updates {
		if u.NumSamples <= 0 {
			sampleCounted = false
			break
		}
	}

	for i, u := range updates {
		if sampleCounted {
			w[i] = float64(u.NumSamples)
		} else {
			w[i] = 1
		}
	}

	return w
}
