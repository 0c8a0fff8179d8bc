package ops

import (
	"fmt"

	"github.com/born-ml/snapgrad/internal/autodiff"
	"github.com/born-ml/snapgrad/internal/tensor"
)

// SoftmaxBackward is the backward node of y = softmax(x) along dim.
//
// The Jacobian of softmax is:
//
//	∂y_i/∂x_j = y_i * (δ_ij - y_j)
//
// Chain rule gives, along dim:
//
//	∂L/∂x_j = y_j * (∂L/∂y_j - Σ_i ∂L/∂y_i * y_i)
//
// so only the output is saved.
type SoftmaxBackward struct {
	autodiff.NodeBase
	result *autodiff.SavedVariable
	dim    int
}

// CanSerialize returns true: the output is saved.
func (n *SoftmaxBackward) CanSerialize() bool {
	return true
}

// SavedVariables returns [result].
func (n *SoftmaxBackward) SavedVariables() []*autodiff.SavedVariable {
	return []*autodiff.SavedVariable{n.result}
}

// ReleaseVariables frees the saved output.
func (n *SoftmaxBackward) ReleaseVariables() {
	n.result.ResetData()
}

// Apply computes the input gradient from the saved output.
func (n *SoftmaxBackward) Apply(grads []*tensor.RawTensor, _ tensor.Backend) ([]*tensor.RawTensor, error) {
	grad := firstGrad(grads)
	if grad == nil {
		return nil, nil
	}
	result, err := n.result.Unpack(n)
	if err != nil {
		return nil, err
	}
	y := result.Data()

	out, err := tensor.NewRaw(y.Shape(), y.DType(), y.Device())
	if err != nil {
		return nil, err
	}
	switch y.DType() {
	case tensor.Float32:
		softmaxGrad(out.AsFloat32(), grad.AsFloat32(), y.AsFloat32(), y.Shape(), n.dim)
	case tensor.Float64:
		softmaxGrad(out.AsFloat64(), grad.AsFloat64(), y.AsFloat64(), y.Shape(), n.dim)
	default:
		return nil, fmt.Errorf("SoftmaxBackward: unsupported dtype %s", y.DType())
	}
	return []*tensor.RawTensor{out}, nil
}

func softmaxGrad[T float](dst, grad, y []T, shape tensor.Shape, dim int) {
	forEachLane(shape, dim, func(base, stride, size int) {
		var dot float64
		for i := 0; i < size; i++ {
			idx := base + i*stride
			dot += float64(grad[idx]) * float64(y[idx])
		}
		for i := 0; i < size; i++ {
			idx := base + i*stride
			dst[idx] = T(float64(y[idx]) * (float64(grad[idx]) - dot))
		}
	})
}
