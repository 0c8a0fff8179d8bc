package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/snapgrad/internal/parallel"
	"github.com/born-ml/snapgrad/internal/tensor"
)

type float interface {
	~float32 | ~float64
}

// Exp computes e^x element-wise.
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.newLike("exp", x)
	cpu.unaryInto(result, x, math.Exp)
	return result
}

// ReLU computes max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.newLike("relu", x)
	cpu.unaryInto(result, x, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	})
	return result
}

func (cpu *CPUBackend) unaryInto(dst, x *tensor.RawTensor, fn func(float64) float64) {
	switch x.DType() {
	case tensor.Float32:
		unary(dst.AsFloat32(), x.AsFloat32(), fn, cpu.parallel)
	case tensor.Float64:
		unary(dst.AsFloat64(), x.AsFloat64(), fn, cpu.parallel)
	default:
		panic(fmt.Sprintf("unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}
}

func (cpu *CPUBackend) binaryInto(dst, a, b *tensor.RawTensor, fn func(x, y float64) float64) {
	switch a.DType() {
	case tensor.Float32:
		binary(dst.AsFloat32(), a.AsFloat32(), b.AsFloat32(), fn, cpu.parallel)
	case tensor.Float64:
		binary(dst.AsFloat64(), a.AsFloat64(), b.AsFloat64(), fn, cpu.parallel)
	default:
		panic(fmt.Sprintf("unsupported dtype %s (only float32/float64 supported)", a.DType()))
	}
}

func unary[T float](dst, src []T, fn func(float64) float64, cfg parallel.Config) {
	parallel.Chunks(len(src), cfg, func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = T(fn(float64(src[i])))
		}
	})
}

func binary[T float](dst, a, b []T, fn func(x, y float64) float64, cfg parallel.Config) {
	parallel.Chunks(len(a), cfg, func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = T(fn(float64(a[i]), float64(b[i])))
		}
	})
}
