package aggregator

import (
	"context"
	"fmt"

	"github.com/fedkit/fedkit/pkg/errors"
	"github.com/fedkit/fedkit/pkg/fl"
)

type identity struct{}

// NewIdentity passes a single update through unchanged. It is only valid for
// single-participant rounds (e.g. under the round-robin controller).
func NewIdentity() Aggregator {
	return &identity{}
}

func (a *identity) Aggregate(_ context.Context, updates []fl.Update) (fl.Theta, error) {
	if len(updates) == 0 {
		return nil, errors.ErrNoUpdates
	}
	if len(updates) != 1 {
		return nil, fmt.Errorf("%w: identity aggregation expects exactly one update, got %d", errors.ErrInvalidData, len(updates))
	}

	return updates[0].Theta.Clone(), nil
}

type modelSum struct{}

// NewModelSum sums updates tensor-wise without averaging.
func NewModelSum() Aggregator {
	return &modelSum{}
}

func (a *modelSum) Aggregate(_ context.Context, updates []fl.Update) (fl.Theta, error) {
	if len(updates) == 0 {
		return nil, errors.ErrNoUpdates
	}

	sum := updates[0].Theta.Clone()
	for u := 1; u < len(updates); u++ {
		if !updates[u].Theta.ShapeEqual(sum) {
			return nil, fmt.Errorf("%w: participant %d", errors.ErrShapeMismatch, updates[u].ParticipantID)
		}
		for l, tensor := range updates[u].Theta {
			for i := range tensor.Data {
				sum[l].Data[i] += tensor.Data[i]
			}
		}
	}

	return sum, nil
}
