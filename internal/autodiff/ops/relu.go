package ops

import (
	"fmt"

	"github.com/born-ml/snapgrad/internal/autodiff"
	"github.com/born-ml/snapgrad/internal/tensor"
)

// ReLUBackward is the backward node of y = max(0, x).
// The gradient passes where y > 0, which only needs the saved output.
type ReLUBackward struct {
	autodiff.NodeBase
	result *autodiff.SavedVariable
}

// CanSerialize returns true: the output is saved.
func (n *ReLUBackward) CanSerialize() bool {
	return true
}

// SavedVariables returns [result].
func (n *ReLUBackward) SavedVariables() []*autodiff.SavedVariable {
	return []*autodiff.SavedVariable{n.result}
}

// ReleaseVariables frees the saved output.
func (n *ReLUBackward) ReleaseVariables() {
	n.result.ResetData()
}

// Apply masks the output gradient with y > 0.
func (n *ReLUBackward) Apply(grads []*tensor.RawTensor, _ tensor.Backend) ([]*tensor.RawTensor, error) {
	grad := firstGrad(grads)
	if grad == nil {
		return nil, nil
	}
	result, err := n.result.Unpack(n)
	if err != nil {
		return nil, err
	}

	out, err := tensor.NewRaw(grad.Shape(), grad.DType(), grad.Device())
	if err != nil {
		return nil, err
	}
	switch grad.DType() {
	case tensor.Float32:
		reluMask(out.AsFloat32(), grad.AsFloat32(), result.Data().AsFloat32())
	case tensor.Float64:
		reluMask(out.AsFloat64(), grad.AsFloat64(), result.Data().AsFloat64())
	default:
		return nil, fmt.Errorf("ReLUBackward: unsupported dtype %s", grad.DType())
	}
	return []*tensor.RawTensor{out}, nil
}

func reluMask[T float](dst, grad, y []T) {
	for i := range dst {
		if y[i] > 0 {
			dst[i] = grad[i]
		}
	}
}
