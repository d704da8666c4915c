// Package controller decides which participants train in a given round. A
// Controller is pure selection logic over a fixed-size registry; the random
// variants take an explicitly seeded generator so selection sequences are
// reproducible run to run.
package controller

import (
	"fmt"
	"math"

	"github.com/fedkit/fedkit/pkg/errors"
)

type Controller interface {
	// Indices returns count distinct participant indices in
	// [0, numParticipants). Asking for more indices than participants exist
	// is a programming error and fails immediately.
	Indices(count int) ([]int, error)
}

// AbsCount converts the configured selection fraction into an absolute
// participant count, clamped to [1, numParticipants].
func AbsCount(c float64, numParticipants int) (int, error) {
	if c <= 0 || c > 1 {
		return 0, fmt.Errorf("%w: %v", errors.ErrInvalidFraction, c)
	}
	if numParticipants < 1 {
		return 0, fmt.Errorf("%w: %d participants", errors.ErrInvalidCount, numParticipants)
	}

	count := int(math.Round(c * float64(numParticipants)))
	if count < 1 {
		count = 1
	}
	if count > numParticipants {
		count = numParticipants
	}

	return count, nil
}

func validateCount(count, numParticipants int) error {
	if count < 1 || count > numParticipants {
		return fmt.Errorf("%w: %d of %d", errors.ErrInvalidCount, count, numParticipants)
	}

	return nil
}
