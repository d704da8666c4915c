package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/fedkit/fedkit/pkg/errors"
)

type inMemoryStorage struct {
	sync.Mutex

	checkpoints map[int]Checkpoint
}

func NewInMemoryStorage() Storage {
	return &inMemoryStorage{
		checkpoints: make(map[int]Checkpoint),
	}
}

func (s *inMemoryStorage) Create(_ context.Context, cp Checkpoint) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.checkpoints[cp.Round]; ok {
		return errors.ErrEntityExists
	}

	// Stored thetas must not alias the coordinator's live weights.
	cp.Theta = cp.Theta.Clone()
	s.checkpoints[cp.Round] = cp

	return nil
}

func (s *inMemoryStorage) Get(_ context.Context, round int) (Checkpoint, error) {
	s.Lock()
	defer s.Unlock()

	if cp, ok := s.checkpoints[round]; ok {
		return cp, nil
	}

	return Checkpoint{}, errors.ErrNotFound
}

func (s *inMemoryStorage) List(_ context.Context, offset, limit uint64) ([]Checkpoint, uint64, error) {
	s.Lock()
	defer s.Unlock()

	rounds := make([]int, 0, len(s.checkpoints))
	for r := range s.checkpoints {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)

	total := uint64(len(rounds))
	if offset >= total {
		return []Checkpoint{}, total, nil
	}

	end := offset + limit
	if limit == 0 || end > total {
		end = total
	}

	result := make([]Checkpoint, 0, end-offset)
	for _, r := range rounds[offset:end] {
		result = append(result, s.checkpoints[r])
	}

	return result, total, nil
}

func (s *inMemoryStorage) Latest(_ context.Context) (Checkpoint, error) {
	s.Lock()
	defer s.Unlock()

	if len(s.checkpoints) == 0 {
		return Checkpoint{}, errors.ErrNotFound
	}

	latest := -1
	for r := range s.checkpoints {
		if r > latest {
			latest = r
		}
	}

	return s.checkpoints[latest], nil
}

func (s *inMemoryStorage) Delete(_ context.Context, round int) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.checkpoints[round]; !ok {
		return errors.ErrNotFound
	}

	delete(s.checkpoints, round)

	return nil
}
