package ops

import (
	"github.com/born-ml/snapgrad/internal/autodiff"
	"github.com/born-ml/snapgrad/internal/tensor"
)

// ExpBackward is the backward node of y = exp(x).
// Since d(exp(x))/dx = y, only the output is saved.
type ExpBackward struct {
	autodiff.NodeBase
	result *autodiff.SavedVariable
}

// CanSerialize returns true: the output is saved.
func (n *ExpBackward) CanSerialize() bool {
	return true
}

// SavedVariables returns [result].
func (n *ExpBackward) SavedVariables() []*autodiff.SavedVariable {
	return []*autodiff.SavedVariable{n.result}
}

// ReleaseVariables frees the saved output.
func (n *ExpBackward) ReleaseVariables() {
	n.result.ResetData()
}

// Apply computes grad_input = grad_output * y.
func (n *ExpBackward) Apply(grads []*tensor.RawTensor, backend tensor.Backend) ([]*tensor.RawTensor, error) {
	grad := firstGrad(grads)
	if grad == nil {
		return nil, nil
	}
	result, err := n.result.Unpack(n)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{backend.Mul(grad, result.Data())}, nil
}
