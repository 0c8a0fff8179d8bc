package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/snapgrad/internal/parallel"
	"github.com/born-ml/snapgrad/internal/tensor"
)

// Softmax computes exp(x_i) / sum_j exp(x_j) over every lane along dim.
// A negative dim counts from the last axis.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("softmax: dim %d out of range for rank %d", dim, len(shape)))
	}

	result := cpu.newLike("softmax", x)

	switch x.DType() {
	case tensor.Float32:
		softmax(result.AsFloat32(), x.AsFloat32(), shape, dim, cpu.parallel)
	case tensor.Float64:
		softmax(result.AsFloat64(), x.AsFloat64(), shape, dim, cpu.parallel)
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s", x.DType()))
	}

	return result
}

// softmax normalizes each lane along dim after shifting by its maximum.
func softmax[T float](dst, src []T, shape tensor.Shape, dim int, cfg parallel.Config) {
	bases := shape.LaneBases(dim)
	stride := shape.ComputeStrides()[dim]
	size := shape[dim]

	parallel.For(len(bases), cfg, func(lane int) {
		base := bases[lane]
		peak := math.Inf(-1)
		for k := 0; k < size; k++ {
			peak = max(peak, float64(src[base+k*stride]))
		}

		var total float64
		for k := 0; k < size; k++ {
			e := math.Exp(float64(src[base+k*stride]) - peak)
			dst[base+k*stride] = T(e)
			total += e
		}
		for k := 0; k < size; k++ {
			dst[base+k*stride] /= T(total)
		}
	})
}
