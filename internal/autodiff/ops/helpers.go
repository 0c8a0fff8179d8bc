package ops

import "github.com/born-ml/snapgrad/internal/tensor"

type float interface {
	~float32 | ~float64
}

// firstGrad returns the gradient of output 0, or nil if none flows.
func firstGrad(grads []*tensor.RawTensor) *tensor.RawTensor {
	if len(grads) == 0 {
		return nil
	}
	return grads[0]
}

// forEachLane calls fn once per 1-D lane along dim with the lane's flat base
// offset, element stride and length.
func forEachLane(shape tensor.Shape, dim int, fn func(base, stride, size int)) {
	stride := shape.ComputeStrides()[dim]
	for _, base := range shape.LaneBases(dim) {
		fn(base, stride, shape[dim])
	}
}
