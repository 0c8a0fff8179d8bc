package tensor

import (
	"fmt"
	"unsafe"
)

// Zeros creates a zero-filled strided tensor.
//
// Example:
//
//	t := tensor.Zeros[float32](Shape{3, 4}, tensor.CPU)
func Zeros[T DType](shape Shape, device Device) *RawTensor {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), device)
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return raw
}

// Full creates a tensor filled with a specific value.
func Full[T DType](shape Shape, value T, device Device) *RawTensor {
	raw := Zeros[T](shape, device)
	data := Values[T](raw)
	for i := range data {
		data[i] = value
	}
	return raw
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), device)
	if err != nil {
		return nil, err
	}
	copy(Values[T](raw), data)
	return raw, nil
}

// Values returns a typed zero-copy view of the tensor's elements.
// Panics if T does not match the tensor's dtype.
func Values[T DType](r *RawTensor) []T {
	var dummy T
	if dt := inferDataType(dummy); dt != r.dtype {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, dt))
	}
	data := r.Data()
	//nolint:gosec // unsafe.Slice for zero-copy access, length derived from NumElements()
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), r.NumElements())
}

// ToSlice returns a copy of the tensor's elements.
func ToSlice[T DType](r *RawTensor) []T {
	return append([]T(nil), Values[T](r)...)
}
