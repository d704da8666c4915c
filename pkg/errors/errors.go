package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyKey     = errors.New("empty key")
	ErrInvalidData  = errors.New("invalid data type")
	ErrEntityExists = errors.New("entity already exists")

	// Selection contract violations.
	ErrInvalidFraction = errors.New("selection fraction must be in (0, 1]")
	ErrInvalidCount    = errors.New("selection count out of range")

	// Aggregation contract violations.
	ErrNoUpdates     = errors.New("no updates to aggregate")
	ErrShapeMismatch = errors.New("weight shapes do not match")
	ErrZeroWeighting = errors.New("sum of weighting scalars is zero")
)
