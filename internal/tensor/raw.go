package tensor

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// ErrByteLength is returned when a copy is attempted between tensors whose
// buffers have different byte lengths.
var ErrByteLength = errors.New("byte length mismatch")

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	CUDA
	Vulkan
	Metal
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case Vulkan:
		return "Vulkan"
	case Metal:
		return "Metal"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// tensorBuffer is a reference-counted shared buffer for Copy-on-Write semantics.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newTensorBuffer creates a new reference-counted buffer with refCount = 1.
func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and deallocates if it reaches 0.
func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.data = nil
	}
}

func (tb *tensorBuffer) isUnique() bool {
	return tb.refCount.Load() == 1
}

// RawTensor is the low-level tensor representation.
//
// Views created by Clone share both the byte buffer and the version counter.
// Writes through MarkMutated or CopyFrom bump the shared counter; writes through
// CopyFromUntracked do not.
type RawTensor struct {
	buffer  *tensorBuffer   // Shared reference-counted buffer
	version *VersionCounter // Shared with every view of the buffer
	shape   Shape
	stride  []int
	dtype   DataType
	device  Device
	layout  Layout
	offset  int
}

// NewRaw creates a new strided RawTensor with the given shape and type.
// Memory is zero-initialized and the version counter starts at 0.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return NewRawWithLayout(shape, dtype, device, Strided)
}

// NewRawWithLayout creates a new RawTensor with an explicit layout.
func NewRawWithLayout(shape Shape, dtype DataType, device Device, layout Layout) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	byteSize := shape.NumElements() * dtype.Size()

	return &RawTensor{
		buffer:  newTensorBuffer(byteSize),
		version: NewVersionCounter(0),
		shape:   shape.Clone(),
		stride:  shape.ComputeStrides(),
		dtype:   dtype,
		device:  device,
		layout:  layout,
		offset:  0,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// Layout returns the tensor's storage layout.
func (r *RawTensor) Layout() Layout {
	return r.layout
}

// IsSparse reports whether the tensor uses a non-strided layout.
func (r *RawTensor) IsSparse() bool {
	return r.layout == Sparse
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Writes are not versioned;
// call MarkMutated after an in-place write.
func (r *RawTensor) Data() []byte {
	return r.buffer.data[r.offset : r.offset+r.ByteSize()]
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	data := r.buffer.data[r.offset:]
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	data := r.buffer.data[r.offset:]
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// Version returns the current version of the shared buffer.
func (r *RawTensor) Version() uint32 {
	return r.version.Current()
}

// VersionCounter returns the counter shared by every view of this buffer.
func (r *RawTensor) VersionCounter() *VersionCounter {
	return r.version
}

// MarkMutated records an in-place write to the buffer.
func (r *RawTensor) MarkMutated() {
	r.version.Bump()
}

// Clone creates a shallow copy of the RawTensor.
// The copy shares the buffer (reference counted) and the version counter.
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer:  r.buffer,
		version: r.version,
		shape:   r.shape.Clone(),
		stride:  append([]int(nil), r.stride...),
		dtype:   r.dtype,
		device:  r.device,
		layout:  r.layout,
		offset:  r.offset,
	}
}

// WithVersion returns a view that shares the buffer but carries its own
// version counter seeded with the given version.
func (r *RawTensor) WithVersion(version uint32) *RawTensor {
	view := r.Clone()
	view.version = NewVersionCounter(version)
	return view
}

// HostClone returns a deep copy of the tensor in host memory.
// The copy is strided, lives on the CPU and starts at version 0.
func (r *RawTensor) HostClone() *RawTensor {
	out := &RawTensor{
		buffer:  newTensorBuffer(r.ByteSize()),
		version: NewVersionCounter(0),
		shape:   r.shape.Clone(),
		stride:  r.shape.ComputeStrides(),
		dtype:   r.dtype,
		device:  CPU,
		layout:  Strided,
	}
	copy(out.buffer.data, r.Data())
	return out
}

// CopyFrom overwrites this tensor's bytes with src's bytes and bumps the version.
func (r *RawTensor) CopyFrom(src *RawTensor) error {
	if err := r.CopyFromUntracked(src); err != nil {
		return err
	}
	r.MarkMutated()
	return nil
}

// CopyFromUntracked overwrites this tensor's bytes with src's bytes without
// touching the version counter. Nothing is written on error.
func (r *RawTensor) CopyFromUntracked(src *RawTensor) error {
	return r.WriteBytes(src.Data())
}

// WriteBytes overwrites this tensor's bytes with p without touching the
// version counter. len(p) must equal ByteSize; nothing is written otherwise.
func (r *RawTensor) WriteBytes(p []byte) error {
	if len(p) != r.ByteSize() {
		return fmt.Errorf("%w: destination has %d bytes, source has %d", ErrByteLength, r.ByteSize(), len(p))
	}
	copy(r.Data(), p)
	return nil
}

// Release decrements the reference count and deallocates if it reaches 0.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsUnique returns true if this tensor is the only reference to the buffer.
// When true, backends can perform inplace operations.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.isUnique()
}

// ForceNonUnique temporarily increases refCount to prevent inplace modifications.
// Returns a cleanup function that MUST be called to restore refCount (use defer).
func (r *RawTensor) ForceNonUnique() func() {
	r.buffer.addRef()
	return func() {
		r.buffer.release()
	}
}

// String returns a short description such as "float32[3] on CPU".
func (r *RawTensor) String() string {
	return fmt.Sprintf("%s%v on %s", r.dtype, r.shape, r.device)
}
