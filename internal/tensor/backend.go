package tensor

// Backend defines the compute kernels the autograd graph needs.
// Kernels return freshly allocated results; a backend that writes into one of
// its inputs must bump that input's version.
type Backend interface {
	// Element-wise binary operations
	Add(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// Scalar operations
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// Element-wise math
	Exp(x *RawTensor) *RawTensor
	ReLU(x *RawTensor) *RawTensor

	// Softmax along dimension dim.
	Softmax(x *RawTensor, dim int) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
