package ops

import (
	"github.com/born-ml/snapgrad/internal/autodiff"
	"github.com/born-ml/snapgrad/internal/tensor"
)

// AddBackward is the backward node of output = a + b.
// The gradient flows unchanged to both inputs; nothing is saved.
type AddBackward struct {
	autodiff.NodeBase
}

// NewAddBackward records the backward node for a + b.
func NewAddBackward(a, b *autodiff.Variable) *AddBackward {
	return &AddBackward{
		NodeBase: autodiff.NewNodeBase("AddBackward", autodiff.CollectNextEdges(a, b)),
	}
}

// Apply passes the output gradient to both inputs.
func (n *AddBackward) Apply(grads []*tensor.RawTensor, _ tensor.Backend) ([]*tensor.RawTensor, error) {
	grad := firstGrad(grads)
	if grad == nil {
		return nil, nil
	}
	return []*tensor.RawTensor{grad, grad.Clone()}, nil
}
