// Package tensor provides the raw tensor storage used by the autograd graph:
// shared byte buffers, shapes, data types and the version counters that detect
// in-place mutation of values saved for the backward pass.
package tensor

// DType is a constraint for supported tensor element types.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	default:
		return "unknown"
	}
}

// Layout describes how elements are arranged in a tensor's buffer.
type Layout int

// Supported layouts. Only Strided tensors can be checkpointed; Sparse tensors
// take the degraded no-op path.
const (
	Strided Layout = iota
	Sparse
)

// String returns a human-readable name for the layout.
func (l Layout) String() string {
	switch l {
	case Strided:
		return "strided"
	case Sparse:
		return "sparse"
	default:
		return "unknown"
	}
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T DType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	default:
		panic("unsupported type")
	}
}
