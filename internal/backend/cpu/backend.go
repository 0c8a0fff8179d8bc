// Package cpu implements the CPU compute backend used by the autograd graph.
package cpu

import (
	"fmt"

	"github.com/born-ml/snapgrad/internal/parallel"
	"github.com/born-ml/snapgrad/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend that splits large kernels across all CPUs.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition of same-shaped tensors.
//
// When a is the only reference to its buffer the sum is written into a and
// a's version is bumped.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	checkSameShape("add", a, b)

	if a.IsUnique() {
		cpu.binaryInto(a, a, b, func(x, y float64) float64 { return x + y })
		a.MarkMutated()
		return a
	}

	result := cpu.newLike("add", a)
	cpu.binaryInto(result, a, b, func(x, y float64) float64 { return x + y })
	return result
}

// Mul performs element-wise multiplication of same-shaped tensors.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	checkSameShape("mul", a, b)

	result := cpu.newLike("mul", a)
	cpu.binaryInto(result, a, b, func(x, y float64) float64 { return x * y })
	return result
}

// MulScalar multiplies each element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := cpu.newLike("mulScalar", x)
	cpu.unaryInto(result, x, func(v float64) float64 { return v * scalar })
	return result
}

func (cpu *CPUBackend) newLike(op string, x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}

func checkSameShape(op string, a, b *tensor.RawTensor) {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, a.Shape(), b.Shape()))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}
}
