// Package fl holds the data model shared between the coordinator, the
// controllers and the aggregators: model weights (theta), per-participant
// updates and the per-round training history.
package fl

import (
	"fmt"

	"github.com/fedkit/fedkit/pkg/errors"
)

// Tensor is one layer's weights, stored as a dense row-major array.
type Tensor struct {
	Dims []int     `json:"dims" cbor:"dims"`
	Data []float64 `json:"data" cbor:"data"`
}

// NewTensor validates that the data length matches the product of dims.
func NewTensor(dims []int, data []float64) (Tensor, error) {
	size := 1
	for _, d := range dims {
		if d < 1 {
			return Tensor{}, fmt.Errorf("%w: dimension %d", errors.ErrInvalidData, d)
		}
		size *= d
	}
	if size != len(data) {
		return Tensor{}, fmt.Errorf("%w: dims %v need %d values, got %d", errors.ErrInvalidData, dims, size, len(data))
	}

	return Tensor{Dims: dims, Data: data}, nil
}

func (t Tensor) Size() int {
	return len(t.Data)
}

func (t Tensor) Clone() Tensor {
	dims := make([]int, len(t.Dims))
	copy(dims, t.Dims)
	data := make([]float64, len(t.Data))
	copy(data, t.Data)

	return Tensor{Dims: dims, Data: data}
}

func (t Tensor) ShapeEqual(o Tensor) bool {
	if len(t.Dims) != len(o.Dims) {
		return false
	}
	for i := range t.Dims {
		if t.Dims[i] != o.Dims[i] {
			return false
		}
	}

	return true
}

// Theta is the full set of model weights, one tensor per layer. Hand-offs
// between the coordinator and participants are always deep copies, never
// aliases.
type Theta []Tensor

func (th Theta) Clone() Theta {
	out := make(Theta, len(th))
	for i := range th {
		out[i] = th[i].Clone()
	}

	return out
}

func (th Theta) ShapeEqual(o Theta) bool {
	if len(th) != len(o) {
		return false
	}
	for i := range th {
		if !th[i].ShapeEqual(o[i]) {
			return false
		}
	}

	return true
}
