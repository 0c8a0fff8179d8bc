package ops

import (
	"github.com/born-ml/snapgrad/internal/autodiff"
	"github.com/born-ml/snapgrad/internal/tensor"
)

// MulBackward is the backward node of output = self * other.
//
// Backward pass:
//   - grad_self = outputGrad * other
//   - grad_other = outputGrad * self
type MulBackward struct {
	autodiff.NodeBase
	self  *autodiff.SavedVariable
	other *autodiff.SavedVariable
}

// NewMulBackward records the backward node for self * other.
func NewMulBackward(self, other *autodiff.Variable) *MulBackward {
	return &MulBackward{
		NodeBase: autodiff.NewNodeBase("MulBackward", autodiff.CollectNextEdges(self, other)),
		self:     autodiff.NewSavedVariable(self, false, false),
		other:    autodiff.NewSavedVariable(other, false, false),
	}
}

// CanSerialize returns true: both operands are saved.
func (n *MulBackward) CanSerialize() bool {
	return true
}

// SavedVariables returns [self, other].
func (n *MulBackward) SavedVariables() []*autodiff.SavedVariable {
	return []*autodiff.SavedVariable{n.self, n.other}
}

// ReleaseVariables frees both saved operands.
func (n *MulBackward) ReleaseVariables() {
	n.self.ResetData()
	n.other.ResetData()
}

// Apply computes [grad_self, grad_other].
func (n *MulBackward) Apply(grads []*tensor.RawTensor, backend tensor.Backend) ([]*tensor.RawTensor, error) {
	grad := firstGrad(grads)
	if grad == nil {
		return nil, nil
	}

	self, err := n.self.Unpack(n)
	if err != nil {
		return nil, err
	}
	other, err := n.other.Unpack(n)
	if err != nil {
		return nil, err
	}

	edges := n.NextEdges()
	out := make([]*tensor.RawTensor, 2)
	if edges[0].IsValid() {
		out[0] = backend.Mul(grad, other.Data())
	}
	if edges[1].IsValid() {
		out[1] = backend.Mul(grad, self.Data())
	}
	return out, nil
}
