package controller

import (
	"math/rand"
)

type random struct {
	numParticipants int
	rng             *rand.Rand
}

// NewRandom samples uniformly without replacement on every call. It keeps no
// memory between calls, so the same participant can train in consecutive
// rounds.
func NewRandom(numParticipants int, rng *rand.Rand) Controller {
	return &random{
		numParticipants: numParticipants,
		rng:             rng,
	}
}

func (r *random) Indices(count int) ([]int, error) {
	if err := validateCount(count, r.numParticipants); err != nil {
		return nil, err
	}

	return r.rng.Perm(r.numParticipants)[:count], nil
}
