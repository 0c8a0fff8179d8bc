// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/snapgrad/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Device(), Layout()
//   - Typed data access via AsFloat32(), AsFloat64()
//   - Shared views via Clone(), host copies via HostClone()
//   - A version counter shared by every view of the buffer
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	data := raw.AsFloat32()
//	clone := raw.Clone() // Shares buffer and version counter
type RawTensor = tensor.RawTensor

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// DataType identifies the element type of a RawTensor.
type DataType = tensor.DataType

// DType is the constraint satisfied by supported Go element types.
type DType = tensor.DType

// Device identifies where a tensor's memory lives.
type Device = tensor.Device

// Layout identifies how a tensor's elements are stored.
type Layout = tensor.Layout

// VersionCounter counts in-place writes to a shared buffer.
type VersionCounter = tensor.VersionCounter

// Data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int32   = tensor.Int32
	Int64   = tensor.Int64
	Uint8   = tensor.Uint8
)

// Devices.
const (
	CPU    = tensor.CPU
	WebGPU = tensor.WebGPU
)

// Layouts.
const (
	Strided = tensor.Strided
	Sparse  = tensor.Sparse
)

// NewRaw creates a zero-filled strided tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// NewRawWithLayout creates a zero-filled tensor with an explicit layout.
func NewRawWithLayout(shape Shape, dtype DataType, device Device, layout Layout) (*RawTensor, error) {
	return tensor.NewRawWithLayout(shape, dtype, device, layout)
}

// FromSlice creates a tensor holding a copy of data.
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromSlice(data, shape, device)
}

// Zeros creates a zero-filled tensor of element type T.
func Zeros[T DType](shape Shape, device Device) *RawTensor {
	return tensor.Zeros[T](shape, device)
}

// Full creates a tensor with every element set to value.
func Full[T DType](shape Shape, value T, device Device) *RawTensor {
	return tensor.Full(shape, value, device)
}

// ToSlice returns a copy of the tensor's elements.
func ToSlice[T DType](r *RawTensor) []T {
	return tensor.ToSlice[T](r)
}
