// Package storage keeps per-round checkpoints of the global model so
// external reporting can retrieve any intermediate state of a run.
package storage

import (
	"context"
	"time"

	"github.com/fedkit/fedkit/pkg/fl"
)

// Checkpoint is the global model state after one completed round.
type Checkpoint struct {
	Round     int       `json:"round"`
	Theta     fl.Theta  `json:"theta"`
	Loss      float64   `json:"loss"`
	Accuracy  float64   `json:"accuracy"`
	CreatedAt time.Time `json:"created_at"`
}

type Storage interface {
	Create(ctx context.Context, cp Checkpoint) error
	Get(ctx context.Context, round int) (Checkpoint, error)
	List(ctx context.Context, offset, limit uint64) ([]Checkpoint, uint64, error)
	Latest(ctx context.Context) (Checkpoint, error)
	Delete(ctx context.Context, round int) error
}
