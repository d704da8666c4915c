package controller

import (
	"math/rand"
)

type cycleRandom struct {
	numParticipants int
	rng             *rand.Rand
	queue           []int
}

// NewCycleRandom draws from a random permutation of all participants and
// regenerates it once exhausted, so every participant is selected exactly
// once per full cycle before any repeats.
func NewCycleRandom(numParticipants int, rng *rand.Rand) Controller {
	return &cycleRandom{
		numParticipants: numParticipants,
		rng:             rng,
	}
}

func (c *cycleRandom) Indices(count int) ([]int, error) {
	if err := validateCount(count, c.numParticipants); err != nil {
		return nil, err
	}

	selected := make([]int, 0, count)
	for len(selected) < count {
		if len(c.queue) == 0 {
			c.queue = c.rng.Perm(c.numParticipants)
		}

		idx := c.queue[0]
		c.queue = c.queue[1:]

		// A cycle boundary inside one call may re-offer an index already
		// selected in this call; skip it to keep the result distinct. The
		// skipped index stays consumed, preserving the once-per-cycle
		// guarantee across calls.
		if contains(selected, idx) {
			continue
		}
		selected = append(selected, idx)
	}

	return selected, nil
}

func contains(indices []int, idx int) bool {
	for _, i := range indices {
		if i == idx {
			return true
		}
	}

	return false
}
