package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedkit/fedkit/pkg/errors"
	"github.com/fedkit/fedkit/pkg/fl"
	"github.com/fedkit/fedkit/pkg/storage"
)

func checkpoint(t *testing.T, round int, value float64) storage.Checkpoint {
	t.Helper()
	tensor, err := fl.NewTensor([]int{1}, []float64{value})
	require.NoError(t, err)

	return storage.Checkpoint{
		Round: round,
		Theta: fl.Theta{tensor},
		Loss:  value,
	}
}

func TestInMemoryStorageCreateGet(t *testing.T) {
	ctx := context.Background()
	db := storage.NewInMemoryStorage()

	require.NoError(t, db.Create(ctx, checkpoint(t, 1, 0.5)))

	cp, err := db.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cp.Round)
	assert.Equal(t, 0.5, cp.Loss)

	_, err = db.Get(ctx, 2)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	err = db.Create(ctx, checkpoint(t, 1, 0.9))
	assert.ErrorIs(t, err, errors.ErrEntityExists)
}

func TestInMemoryStorageDoesNotAliasTheta(t *testing.T) {
	ctx := context.Background()
	db := storage.NewInMemoryStorage()

	cp := checkpoint(t, 0, 1.0)
	require.NoError(t, db.Create(ctx, cp))

	cp.Theta[0].Data[0] = 42

	stored, err := db.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, stored.Theta[0].Data[0])
}

func TestInMemoryStorageListOrdersByRound(t *testing.T) {
	ctx := context.Background()
	db := storage.NewInMemoryStorage()

	for _, round := range []int{2, 0, 1} {
		require.NoError(t, db.Create(ctx, checkpoint(t, round, float64(round))))
	}

	cps, total, err := db.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	require.Len(t, cps, 3)
	for i, cp := range cps {
		assert.Equal(t, i, cp.Round)
	}

	cps, total, err = db.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	require.Len(t, cps, 1)
	assert.Equal(t, 1, cps[0].Round)
}

func TestInMemoryStorageLatest(t *testing.T) {
	ctx := context.Background()
	db := storage.NewInMemoryStorage()

	_, err := db.Latest(ctx)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	require.NoError(t, db.Create(ctx, checkpoint(t, 0, 0)))
	require.NoError(t, db.Create(ctx, checkpoint(t, 3, 3)))
	require.NoError(t, db.Create(ctx, checkpoint(t, 1, 1)))

	cp, err := db.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, cp.Round)
}

func TestInMemoryStorageDelete(t *testing.T) {
	ctx := context.Background()
	db := storage.NewInMemoryStorage()

	require.NoError(t, db.Create(ctx, checkpoint(t, 0, 0)))
	require.NoError(t, db.Delete(ctx, 0))
	assert.ErrorIs(t, db.Delete(ctx, 0), errors.ErrNotFound)
}
