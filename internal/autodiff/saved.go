package autodiff

import (
	"fmt"
	"strings"
	"weak"

	"github.com/born-ml/snapgrad/internal/blob"
	"github.com/born-ml/snapgrad/internal/tensor"
)

// SavedVariable is a snapshot of a variable taken when a node caches it for
// its backward formula. It keeps enough to rebuild the variable later and to
// detect whether the underlying buffer was overwritten in between.
//
// The buffer is shared with the original variable, not copied.
type SavedVariable struct {
	data            *tensor.RawTensor
	producer        producerRef
	gradAccumulator weak.Pointer[AccumulateGrad]
	savedVersion    uint32
	outputNr        int

	wasDefaultConstructed bool
	requiresGrad          bool
	hasGradFn             bool
	isOutput              bool
	isInplaceView         bool
}

// NewSavedVariable captures v.
//
// isOutput is true when v is an output of the node that saves it; the node
// must then be passed back to Unpack. isInplaceView marks an output that
// is an in-place view, for which a weak producer reference is kept.
func NewSavedVariable(v *Variable, isOutput, isInplaceView bool) *SavedVariable {
	sv := &SavedVariable{wasDefaultConstructed: true}
	if v == nil || v.data == nil {
		return sv
	}

	sv.wasDefaultConstructed = false
	sv.outputNr = v.outputNr
	sv.requiresGrad = v.requiresGrad
	sv.hasGradFn = !v.IsLeaf()
	sv.isOutput = isOutput
	sv.isInplaceView = isInplaceView
	sv.data = v.data.Clone()

	switch {
	case v.IsLeaf():
		sv.gradAccumulator = weak.Make(v.GradAccumulator())
	case !isOutput:
		sv.producer = ownedRef{node: v.gradFn}
	case isInplaceView:
		sv.producer = observe(v.gradFn)
	}

	sv.savedVersion = sv.data.Version()
	return sv
}

// Data returns the saved buffer, or nil if it was released or never set.
func (sv *SavedVariable) Data() *tensor.RawTensor {
	return sv.data
}

// IsDefined reports whether the snapshot still holds a buffer.
func (sv *SavedVariable) IsDefined() bool {
	return sv.data != nil
}

// SavedVersion returns the version stamp recorded at capture time.
func (sv *SavedVariable) SavedVersion() uint32 {
	return sv.savedVersion
}

// OutputNr returns the output slot recorded at capture time.
func (sv *SavedVariable) OutputNr() int {
	return sv.outputNr
}

// IsLeaf reports whether the captured variable was a leaf.
func (sv *SavedVariable) IsLeaf() bool {
	return !sv.wasDefaultConstructed && !sv.hasGradFn
}

// Provenance returns how the snapshot refers to its producer.
func (sv *SavedVariable) Provenance() Provenance {
	if sv.producer != nil {
		return sv.producer.kind()
	}
	if sv.IsLeaf() && sv.requiresGrad {
		return ProvenanceAccumulator
	}
	return ProvenanceNone
}

// Unpack rebuilds the saved variable.
//
// savedFor is used as the producer when the snapshot did not keep one
// (outputs of the saving node). The result shares the saved buffer, carries
// the recorded version stamp and points at the resolved producer.
// A snapshot taken of nothing unpacks to nil.
func (sv *SavedVariable) Unpack(savedFor Node) (*Variable, error) {
	if sv.data == nil {
		if !sv.wasDefaultConstructed {
			return nil, ErrValueAlreadyConsumed
		}
		return nil, nil
	}

	var gradFn Node
	if sv.producer != nil {
		gradFn = sv.producer.resolve()
	}
	if sv.hasGradFn && gradFn == nil {
		if savedFor == nil {
			return nil, ErrMissingProducer
		}
		gradFn = savedFor
	}

	if current := sv.data.Version(); current != sv.savedVersion {
		return nil, sv.staleError(gradFn, current)
	}

	data := sv.data.WithVersion(sv.savedVersion)
	var v *Variable
	if gradFn != nil {
		v = NewResult(data, gradFn, sv.outputNr)
	} else {
		v = NewLeaf(data, sv.requiresGrad)
	}

	if sv.requiresGrad && v.IsLeaf() && sv.gradAccumulator.Value() == nil {
		return nil, ErrMissingAccumulator
	}
	v.gradAccumulator = sv.gradAccumulator

	return v, nil
}

func (sv *SavedVariable) staleError(gradFn Node, current uint32) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "one of the variables needed for gradient computation has been modified by an inplace operation: [%s]", sv.data)
	if gradFn != nil {
		fmt.Fprintf(&msg, ", which is output %d of %s,", sv.outputNr, gradFn.Name())
	}
	fmt.Fprintf(&msg, " is at version %d; expected version %d instead.", current, sv.savedVersion)
	if AnomalyEnabled() {
		msg.WriteString(" Hint: the variable in question was changed by the operation logged before this failure or anywhere later.")
	} else {
		msg.WriteString(" Hint: enable anomaly detection with autodiff.SetDetectAnomaly(true) to find the operation that modified it.")
	}
	return fmt.Errorf("%w: %s", ErrStaleVersion, msg.String())
}

// CopyDataFrom overwrites the saved buffer with src's bytes.
//
// The version counter is left untouched, so snapshots of the same buffer stay
// valid. This is how a recorded graph is pointed at different data before a
// backward replay. The byte lengths must match exactly.
func (sv *SavedVariable) CopyDataFrom(src *tensor.RawTensor) error {
	if sv.data == nil {
		return ErrValueAlreadyConsumed
	}
	if src.ByteSize() != sv.data.ByteSize() {
		return fmt.Errorf("%w: saved %s has %d bytes, source %s has %d",
			ErrShapeMismatch, sv.data, sv.data.ByteSize(), src, src.ByteSize())
	}
	return NoGrad(func() error {
		return sv.data.CopyFromUntracked(src)
	})
}

// ToBlob encodes the saved buffer.
//
// Sparse buffers cannot be encoded; they produce an empty blob and a warning
// so one unsupported node does not abort a whole checkpoint.
func (sv *SavedVariable) ToBlob() (blob.Blob, error) {
	if sv.data == nil {
		if sv.wasDefaultConstructed {
			return blob.Empty(), nil
		}
		return blob.Blob{}, ErrValueAlreadyConsumed
	}
	if sv.data.IsSparse() {
		logger().Warn("cannot serialize sparse saved variable; the graph will not be fully reconstructed",
			"tensor", sv.data.String())
		return blob.Empty(), nil
	}
	return blob.Encode(sv.data), nil
}

// CheckBlob reports whether FromBlob would accept b, without writing.
func (sv *SavedVariable) CheckBlob(b blob.Blob) error {
	_, _, err := sv.checkBlob(b)
	return err
}

// checkBlob validates b against the saved buffer. write is false when there
// is nothing to restore into.
func (sv *SavedVariable) checkBlob(b blob.Blob) (payload []byte, write bool, err error) {
	if sv.data == nil {
		if sv.wasDefaultConstructed {
			return nil, false, nil
		}
		return nil, false, ErrValueAlreadyConsumed
	}
	if sv.data.IsSparse() {
		return nil, false, nil
	}

	declared, payload, err := blob.Decode(b)
	if err != nil {
		return nil, false, err
	}
	if declared != uint64(sv.data.ByteSize()) {
		return nil, false, fmt.Errorf("%w: blob declares %d bytes, saved %s has %d",
			ErrSizeMismatch, declared, sv.data, sv.data.ByteSize())
	}
	return payload, true, nil
}

// FromBlob restores the saved buffer from b through CopyDataFrom.
// Sparse buffers are left untouched. Nothing is written when the blob's
// declared length differs from the buffer's byte length.
func (sv *SavedVariable) FromBlob(b blob.Blob) error {
	payload, write, err := sv.checkBlob(b)
	if err != nil || !write {
		return err
	}

	host := sv.data.HostClone()
	if err := host.WriteBytes(payload); err != nil {
		return err
	}
	return sv.CopyDataFrom(host)
}

// ResetData releases the saved buffer. Later Unpack calls fail with
// ErrValueAlreadyConsumed.
func (sv *SavedVariable) ResetData() {
	if sv.data != nil {
		sv.data.Release()
		sv.data = nil
	}
}

// ResetGradFunction drops the producer reference.
func (sv *SavedVariable) ResetGradFunction() {
	sv.producer = nil
}
