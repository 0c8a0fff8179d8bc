package autodiff

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/snapgrad/internal/tensor"
)

// scaleNode is a minimal backward node for y = factor * x that saves its input.
type scaleNode struct {
	NodeBase
	input  *SavedVariable
	factor float64
}

func newScaleNode(x *Variable, factor float64) *scaleNode {
	return &scaleNode{
		NodeBase: NewNodeBase("ScaleBackward", CollectNextEdges(x)),
		input:    NewSavedVariable(x, false, false),
		factor:   factor,
	}
}

func (n *scaleNode) CanSerialize() bool { return true }

func (n *scaleNode) SavedVariables() []*SavedVariable { return []*SavedVariable{n.input} }

func (n *scaleNode) ReleaseVariables() { n.input.ResetData() }

func (n *scaleNode) Apply(grads []*tensor.RawTensor, backend tensor.Backend) ([]*tensor.RawTensor, error) {
	if _, err := n.input.Unpack(n); err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{backend.MulScalar(grads[0], n.factor)}, nil
}

func float32Tensor(t *testing.T, data ...float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(data, tensor.Shape{len(data)}, tensor.CPU)
	require.NoError(t, err)
	return raw
}

// scale records y = factor * x without a backend.
func scale(t *testing.T, x *Variable, factor float64) *Variable {
	t.Helper()
	node := newScaleNode(x, factor)
	out := x.Data().HostClone()
	for i, v := range out.AsFloat32() {
		out.AsFloat32()[i] = v * float32(factor)
	}
	return NewResult(out, node, 0)
}

// collectUntil runs the garbage collector until cond holds or gives up.
func collectUntil(cond func() bool) bool {
	for i := 0; i < 10; i++ {
		runtime.GC()
		if cond() {
			return true
		}
	}
	return false
}
