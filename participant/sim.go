package participant

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/fedkit/fedkit/pkg/errors"
	"github.com/fedkit/fedkit/pkg/fl"
)

// Dataset is a labelled split of samples. X is row-major, one feature vector
// per sample.
type Dataset struct {
	X [][]float64
	Y []float64
}

// SynthesizeSplits generates a linear ground truth and numSplits+1 noisy
// sample splits drawn from it: one split per participant plus a final
// validation split. Stands in for the dataset tooling that lives outside
// this repository.
func SynthesizeSplits(rng *rand.Rand, numSplits, samplesPerSplit, dim int) ([]Dataset, Dataset) {
	truth := make([]float64, dim+1)
	for i := range truth {
		truth[i] = rng.NormFloat64()
	}

	gen := func() Dataset {
		ds := Dataset{
			X: make([][]float64, samplesPerSplit),
			Y: make([]float64, samplesPerSplit),
		}
		for s := 0; s < samplesPerSplit; s++ {
			x := make([]float64, dim)
			y := truth[dim] // bias
			for i := range x {
				x[i] = rng.NormFloat64()
				y += truth[i] * x[i]
			}
			ds.X[s] = x
			ds.Y[s] = y + 0.01*rng.NormFloat64()
		}

		return ds
	}

	splits := make([]Dataset, numSplits)
	for i := range splits {
		splits[i] = gen()
	}

	return splits, gen()
}

// LinearModel provides zero-initialized weights for a linear model over dim
// features: a single tensor of dim coefficients plus a bias term.
type LinearModel struct {
	Dim int
}

func (m LinearModel) InitModel() (fl.Theta, error) {
	tensor, err := fl.NewTensor([]int{m.Dim + 1}, make([]float64, m.Dim+1))
	if err != nil {
		return nil, err
	}

	return fl.Theta{tensor}, nil
}

// SimTrainer trains a linear model on its private split by full-batch
// gradient descent. It simulates a remote participant for demos and tests.
type SimTrainer struct {
	Split        Dataset
	LearningRate float64
}

func (t *SimTrainer) TrainRound(ctx context.Context, theta fl.Theta, epochs int) (fl.Theta, int, error) {
	if _, err := linearWeights(theta); err != nil {
		return nil, 0, err
	}

	local := theta.Clone()
	weights := local[0].Data

	n := len(t.Split.X)
	if n == 0 {
		return nil, 0, fmt.Errorf("%w: empty training split", errors.ErrInvalidData)
	}
	dim := len(weights) - 1

	for e := 0; e < epochs; e++ {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}

		grad := make([]float64, len(weights))
		for s := 0; s < n; s++ {
			residual := predict(weights, t.Split.X[s]) - t.Split.Y[s]
			for i := 0; i < dim; i++ {
				grad[i] += residual * t.Split.X[s][i]
			}
			grad[dim] += residual
		}
		for i := range weights {
			weights[i] -= t.LearningRate * grad[i] / float64(n)
		}
	}

	return local, n, nil
}

// SimEvaluator scores weights on a held-out validation split: loss is mean
// squared error, accuracy the fraction of predictions within Tolerance of
// the label.
type SimEvaluator struct {
	Validation Dataset
	Tolerance  float64
}

func (e *SimEvaluator) Evaluate(ctx context.Context, theta fl.Theta) (float64, float64, error) {
	select {
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	default:
	}

	weights, err := linearWeights(theta)
	if err != nil {
		return 0, 0, err
	}

	n := len(e.Validation.X)
	if n == 0 {
		return 0, 0, fmt.Errorf("%w: empty validation split", errors.ErrInvalidData)
	}

	var loss float64
	var hits int
	for s := 0; s < n; s++ {
		residual := predict(weights, e.Validation.X[s]) - e.Validation.Y[s]
		loss += residual * residual
		if residual < e.Tolerance && residual > -e.Tolerance {
			hits++
		}
	}

	return loss / float64(n), float64(hits) / float64(n), nil
}

func linearWeights(theta fl.Theta) ([]float64, error) {
	if len(theta) != 1 || len(theta[0].Data) < 2 {
		return nil, fmt.Errorf("%w: expected a single coefficient tensor", errors.ErrShapeMismatch)
	}

	return theta[0].Data, nil
}

func predict(weights, x []float64) float64 {
	dim := len(weights) - 1
	y := weights[dim]
	for i := 0; i < dim && i < len(x); i++ {
		y += weights[i] * x[i]
	}

	return y
}
