package autodiff

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/snapgrad/internal/blob"
	"github.com/born-ml/snapgrad/internal/tensor"
)

func TestNewSavedVariable_Policy(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1, 2), true)
	y := scale(t, x, 2)
	c := NewLeaf(float32Tensor(t, 3), false)

	tests := []struct {
		name          string
		v             *Variable
		isOutput      bool
		isInplaceView bool
		want          Provenance
		leaf          bool
	}{
		{"leaf requiring grad", x, false, false, ProvenanceAccumulator, true},
		{"leaf without grad", c, false, false, ProvenanceNone, true},
		{"input of saving node", y, false, false, ProvenanceOwned, false},
		{"output of saving node", y, true, false, ProvenanceNone, false},
		{"output that is an inplace view", y, true, true, ProvenanceObserved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sv := NewSavedVariable(tt.v, tt.isOutput, tt.isInplaceView)
			assert.Equal(t, tt.want, sv.Provenance())
			assert.Equal(t, tt.leaf, sv.IsLeaf())
			assert.True(t, sv.IsDefined())
			assert.Equal(t, tt.v.Version(), sv.SavedVersion())
			assert.Equal(t, tt.v.OutputNr(), sv.OutputNr())
		})
	}
}

func TestNewSavedVariable_SharesBuffer(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1, 2), false)
	sv := NewSavedVariable(x, false, false)

	x.Data().AsFloat32()[0] = 9
	assert.Equal(t, float32(9), sv.Data().AsFloat32()[0])
	assert.Same(t, x.Data().VersionCounter(), sv.Data().VersionCounter())
}

func TestSavedVariable_DefaultConstructed(t *testing.T) {
	sv := NewSavedVariable(nil, false, false)

	assert.False(t, sv.IsDefined())
	assert.False(t, sv.IsLeaf())

	v, err := sv.Unpack(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	b, err := sv.ToBlob()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), b.DeclaredLen())
	assert.NoError(t, sv.FromBlob(b))
}

func TestUnpack_RoundTrip(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1, 2), true)
	y := scale(t, x, 3)
	y.Data().MarkMutated()

	sv := NewSavedVariable(y, false, false)
	restored, err := sv.Unpack(nil)
	require.NoError(t, err)

	assert.Same(t, y.GradFn(), restored.GradFn())
	assert.Equal(t, y.OutputNr(), restored.OutputNr())
	assert.Equal(t, uint32(1), restored.Version())
	assert.Equal(t, y.Data().AsFloat32(), restored.Data().AsFloat32())
	assert.True(t, restored.RequiresGrad())
}

func TestUnpack_OutputUsesSavedFor(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1), true)
	y := scale(t, x, 2)
	sv := NewSavedVariable(y, true, false)

	restored, err := sv.Unpack(y.GradFn())
	require.NoError(t, err)
	assert.Same(t, y.GradFn(), restored.GradFn())

	_, err = sv.Unpack(nil)
	assert.ErrorIs(t, err, ErrMissingProducer)
}

func TestUnpack_LeafKeepsAccumulator(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1), true)
	acc := x.GradAccumulator()
	sv := NewSavedVariable(x, false, false)

	restored, err := sv.Unpack(nil)
	require.NoError(t, err)
	assert.True(t, restored.IsLeaf())
	assert.Same(t, acc, restored.GradAccumulator())
}

func TestUnpack_MissingAccumulator(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1), true)
	sv := NewSavedVariable(x, false, false)

	require.True(t, collectUntil(func() bool { return sv.gradAccumulator.Value() == nil }),
		"accumulator was never collected")

	_, err := sv.Unpack(nil)
	assert.ErrorIs(t, err, ErrMissingAccumulator)
}

func TestUnpack_ObservedProducerExpires(t *testing.T) {
	sv := func() *SavedVariable {
		x := NewLeaf(float32Tensor(t, 1), true)
		y := scale(t, x, 2)
		return NewSavedVariable(y, true, true)
	}()
	require.Equal(t, ProvenanceObserved, sv.Provenance())

	require.True(t, collectUntil(func() bool { return sv.producer.resolve() == nil }),
		"producer was never collected")

	_, err := sv.Unpack(nil)
	assert.ErrorIs(t, err, ErrMissingProducer)
}

func TestUnpack_ObservedProducerAlive(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1), true)
	y := scale(t, x, 2)
	sv := NewSavedVariable(y, true, true)

	restored, err := sv.Unpack(nil)
	require.NoError(t, err)
	assert.Same(t, y.GradFn(), restored.GradFn())
}

func TestUnpack_StaleVersion(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1, 2, 3), true)
	y := scale(t, x, 2)
	sv := NewSavedVariable(y, false, false)

	y.Data().MarkMutated()

	t.Run("default hint", func(t *testing.T) {
		_, err := sv.Unpack(nil)
		require.ErrorIs(t, err, ErrStaleVersion)
		msg := err.Error()
		assert.Contains(t, msg, "float32[3] on CPU")
		assert.Contains(t, msg, "output 0 of ScaleBackward")
		assert.Contains(t, msg, "is at version 1; expected version 0 instead")
		assert.Contains(t, msg, "SetDetectAnomaly(true)")
	})

	t.Run("anomaly hint", func(t *testing.T) {
		SetDetectAnomaly(true)
		defer SetDetectAnomaly(false)

		_, err := sv.Unpack(nil)
		require.ErrorIs(t, err, ErrStaleVersion)
		assert.Contains(t, err.Error(), "changed by the operation logged before this failure")
	})
}

func TestUnpack_StaleLeafHasNoProducerName(t *testing.T) {
	c := NewLeaf(float32Tensor(t, 1), false)
	sv := NewSavedVariable(c, false, false)
	c.Data().MarkMutated()

	_, err := sv.Unpack(nil)
	require.ErrorIs(t, err, ErrStaleVersion)
	assert.NotContains(t, err.Error(), "which is output")
}

func TestSavedVariable_Consumed(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1), false)
	sv := NewSavedVariable(x, false, false)
	sv.ResetData()

	assert.False(t, sv.IsDefined())

	_, err := sv.Unpack(nil)
	assert.ErrorIs(t, err, ErrValueAlreadyConsumed)

	_, err = sv.ToBlob()
	assert.ErrorIs(t, err, ErrValueAlreadyConsumed)

	err = sv.FromBlob(blob.Empty())
	assert.ErrorIs(t, err, ErrValueAlreadyConsumed)

	err = sv.CopyDataFrom(float32Tensor(t, 1))
	assert.ErrorIs(t, err, ErrValueAlreadyConsumed)
}

func TestCopyDataFrom_BypassesVersion(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1, 2), false)
	first := NewSavedVariable(x, false, false)
	second := NewSavedVariable(x, false, false)

	require.NoError(t, first.CopyDataFrom(float32Tensor(t, 7, 8)))

	assert.Equal(t, []float32{7, 8}, x.Data().AsFloat32())
	assert.Equal(t, uint32(0), x.Version())

	restored, err := second.Unpack(nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{7, 8}, restored.Data().AsFloat32())
	assert.True(t, GradEnabled(), "recording must be re-enabled after the copy")
}

func TestCopyDataFrom_ShapeMismatch(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1, 2), false)
	sv := NewSavedVariable(x, false, false)

	err := sv.CopyDataFrom(float32Tensor(t, 1, 2, 3))
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Equal(t, []float32{1, 2}, x.Data().AsFloat32())
}

func TestBlob_RoundTrip(t *testing.T) {
	src := NewLeaf(float32Tensor(t, 1, 2, 3), false)
	dst := NewLeaf(float32Tensor(t, 0, 0, 0), false)
	dst.Data().MarkMutated()

	b, err := NewSavedVariable(src, false, false).ToBlob()
	require.NoError(t, err)
	assert.Equal(t, uint64(12), b.DeclaredLen())

	target := NewSavedVariable(dst, false, false)
	require.NoError(t, target.FromBlob(b))

	assert.Equal(t, []float32{1, 2, 3}, dst.Data().AsFloat32())
	assert.Equal(t, uint32(1), dst.Version(), "restore must not bump the version")

	_, err = target.Unpack(nil)
	assert.NoError(t, err)
}

func TestFromBlob_SizeMismatch(t *testing.T) {
	dst := NewLeaf(float32Tensor(t, 5, 6), false)
	sv := NewSavedVariable(dst, false, false)

	err := sv.FromBlob(blob.EncodeBytes(make([]byte, 4)))
	require.ErrorIs(t, err, ErrSizeMismatch)
	assert.Equal(t, []float32{5, 6}, dst.Data().AsFloat32())
}

func TestCheckBlob_DoesNotWrite(t *testing.T) {
	dst := NewLeaf(float32Tensor(t, 5, 6), false)
	sv := NewSavedVariable(dst, false, false)

	require.NoError(t, sv.CheckBlob(blob.EncodeBytes(make([]byte, 8))))
	require.ErrorIs(t, sv.CheckBlob(blob.EncodeBytes(make([]byte, 4))), ErrSizeMismatch)
	assert.Equal(t, []float32{5, 6}, dst.Data().AsFloat32())
}

func TestFromBlob_Truncated(t *testing.T) {
	dst := NewLeaf(float32Tensor(t, 5), false)
	sv := NewSavedVariable(dst, false, false)

	err := sv.FromBlob(blob.FromBytes([]byte{1, 2}))
	require.ErrorIs(t, err, blob.ErrTruncated)
	assert.Equal(t, []float32{5}, dst.Data().AsFloat32())
}

func TestSparse_DegradedPath(t *testing.T) {
	var logs bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	defer SetLogger(nil)

	raw, err := tensor.NewRawWithLayout(tensor.Shape{2}, tensor.Float32, tensor.CPU, tensor.Sparse)
	require.NoError(t, err)
	sv := NewSavedVariable(NewLeaf(raw, false), false, false)

	b, err := sv.ToBlob()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), b.DeclaredLen())
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "cannot serialize sparse saved variable")

	require.NoError(t, sv.FromBlob(blob.EncodeBytes([]byte{1, 2, 3})))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0}, raw.Data())
}

func TestResetGradFunction(t *testing.T) {
	x := NewLeaf(float32Tensor(t, 1), true)
	y := scale(t, x, 2)
	sv := NewSavedVariable(y, false, false)

	sv.ResetGradFunction()
	assert.Equal(t, ProvenanceNone, sv.Provenance())

	_, err := sv.Unpack(nil)
	assert.ErrorIs(t, err, ErrMissingProducer)
}

func TestProvenance_String(t *testing.T) {
	assert.Equal(t, "none", ProvenanceNone.String())
	assert.Equal(t, "owned", ProvenanceOwned.String())
	assert.Equal(t, "observed", ProvenanceObserved.String())
	assert.Equal(t, "accumulator", ProvenanceAccumulator.String())
}
