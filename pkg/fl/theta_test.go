package fl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedkit/fedkit/pkg/fl"
)

func TestNewTensor(t *testing.T) {
	tests := []struct {
		name        string
		dims        []int
		data        []float64
		expectError bool
	}{
		{
			name: "matching size",
			dims: []int{2, 3},
			data: []float64{1, 2, 3, 4, 5, 6},
		},
		{
			name: "scalar-like single dim",
			dims: []int{1},
			data: []float64{42},
		},
		{
			name:        "size mismatch",
			dims:        []int{2, 2},
			data:        []float64{1, 2, 3},
			expectError: true,
		},
		{
			name:        "zero dimension",
			dims:        []int{0, 3},
			data:        []float64{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tensor, err := fl.NewTensor(tt.dims, tt.data)
			if tt.expectError {
				assert.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.data), tensor.Size())
		})
	}
}

func TestThetaCloneIsIndependent(t *testing.T) {
	w, err := fl.NewTensor([]int{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	b, err := fl.NewTensor([]int{2}, []float64{0.5, 0.5})
	require.NoError(t, err)
	theta := fl.Theta{w, b}

	clone := theta.Clone()
	clone[0].Data[0] = 100
	clone[1].Dims[0] = 7

	assert.Equal(t, 1.0, theta[0].Data[0])
	assert.Equal(t, 2, theta[1].Dims[0])
	assert.True(t, theta.ShapeEqual(theta.Clone()))
}

func TestThetaShapeEqual(t *testing.T) {
	a, err := fl.NewTensor([]int{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	b, err := fl.NewTensor([]int{4}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	assert.True(t, fl.Theta{a}.ShapeEqual(fl.Theta{a.Clone()}))
	assert.False(t, fl.Theta{a}.ShapeEqual(fl.Theta{b}))
	assert.False(t, fl.Theta{a}.ShapeEqual(fl.Theta{a, b}))
}

func TestMarshalRoundTrip(t *testing.T) {
	w, err := fl.NewTensor([]int{1, 3}, []float64{0.25, -1.5, 3})
	require.NoError(t, err)
	theta := fl.Theta{w}

	data, err := fl.Marshal(theta)
	require.NoError(t, err)

	decoded, err := fl.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, theta, decoded)
}
