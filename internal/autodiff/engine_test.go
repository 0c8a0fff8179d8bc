package autodiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/snapgrad/internal/backend/cpu"
	"github.com/born-ml/snapgrad/internal/tensor"
)

func TestBackward_Chain(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1, 2), true)
	y := scale(t, scale(t, x, 2), 3)

	require.NoError(t, NewEngine(cpu.New()).Backward(y, float32Tensor(t, 1, 1), false))
	assert.Equal(t, []float32{6, 6}, x.Grad().AsFloat32())
}

func TestBackward_Diamond(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1), true)
	shared := scale(t, x, 2)
	left := scale(t, shared, 3)

	right := scale(t, shared, 5)
	sum := &fanOut{NodeBase: NewNodeBase("SumBackward", CollectNextEdges(left, right))}
	root := NewResult(float32Tensor(t, 0), sum, 0)

	deps := countDependencies(root.GradFn())
	assert.Equal(t, 2, deps[shared.GradFn()])

	require.NoError(t, NewEngine(cpu.New()).Backward(root, float32Tensor(t, 1), false))
	assert.Equal(t, []float32{16}, x.Grad().AsFloat32())
}

// fanOut passes its gradient to every input unchanged.
type fanOut struct {
	NodeBase
}

func (f *fanOut) Apply(grads []*tensor.RawTensor, _ tensor.Backend) ([]*tensor.RawTensor, error) {
	out := make([]*tensor.RawTensor, len(f.NextEdges()))
	for i := range out {
		out[i] = grads[0].Clone()
	}
	return out, nil
}

func TestBackward_Errors(t *testing.T) {
	engine := NewEngine(cpu.New())

	c := NewLeaf(float32Tensor(t, 1), false)
	assert.ErrorIs(t, engine.Backward(c, float32Tensor(t, 1), false), ErrNoGradient)

	x := NewLeaf(float32Tensor(t, 1, 2), true)
	y := scale(t, x, 2)
	err := engine.Backward(y, float32Tensor(t, 1), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed shape")

	seed64, err := tensor.FromSlice([]float64{1, 1}, tensor.Shape{2}, tensor.CPU)
	require.NoError(t, err)
	err = engine.Backward(y, seed64, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed dtype float64")
	assert.Nil(t, x.Grad())
}

func TestBackward_ReleasesSavedVariables(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1), true)
	y := scale(t, x, 2)
	node := y.GradFn().(*scaleNode)

	require.NoError(t, NewEngine(cpu.New()).Backward(y, float32Tensor(t, 1), false))
	assert.False(t, node.input.IsDefined())

	err := NewEngine(cpu.New()).Backward(y, float32Tensor(t, 1), false)
	require.ErrorIs(t, err, ErrValueAlreadyConsumed)
	assert.Contains(t, err.Error(), "backward: ScaleBackward")
}

func TestBackward_LeafRoot(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 3), true)
	require.NoError(t, NewEngine(cpu.New()).Backward(x, float32Tensor(t, 2), false))
	assert.Equal(t, []float32{2}, x.Grad().AsFloat32())
}

func TestZeroGrad(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 3), true)
	x.ZeroGrad()
	assert.Nil(t, x.Grad())

	require.NoError(t, NewEngine(cpu.New()).Backward(x, float32Tensor(t, 2), false))
	x.ZeroGrad()
	assert.Equal(t, []float32{0}, x.Grad().AsFloat32())
}

func TestGradAccumulator(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1), true)
	acc := x.GradAccumulator()
	assert.Same(t, acc, x.GradAccumulator())
	assert.Same(t, x, acc.Variable())
	assert.Equal(t, "AccumulateGrad", acc.Name())

	assert.Nil(t, NewLeaf(float32Tensor(t, 1), false).GradAccumulator())
	assert.Nil(t, scale(t, x, 2).GradAccumulator())
}

func TestNoGrad_Restores(t *testing.T) {
	require.True(t, GradEnabled())
	err := NoGrad(func() error {
		assert.False(t, GradEnabled())
		return nil
	})
	require.NoError(t, err)
	assert.True(t, GradEnabled())
}
