package tensor

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Shape lists a tensor's dimensions, outermost first. An empty shape is a scalar.
type Shape []int

// NumElements returns the product of the dimensions.
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Validate rejects zero or negative dimensions.
func (s Shape) Validate() error {
	if i := slices.IndexFunc(s, func(d int) bool { return d <= 0 }); i >= 0 {
		return fmt.Errorf("dimension %d is %d, must be positive", i, s[i])
	}
	return nil
}

// Equal reports whether s and other have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns an independent copy.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

// ComputeStrides returns row-major element strides.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	step := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = step
		step *= s[i]
	}
	return strides
}

// String formats the shape as "[d0, d1, ...]".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// LaneBases returns the flat offset of the first element of every 1-D lane
// along dim. Elements of a lane are ComputeStrides()[dim] apart.
func (s Shape) LaneBases(dim int) []int {
	strides := s.ComputeStrides()
	bases := []int{0}
	for i, d := range s {
		if i == dim {
			continue
		}
		next := make([]int, 0, len(bases)*d)
		for _, b := range bases {
			for k := 0; k < d; k++ {
				next = append(next, b+k*strides[i])
			}
		}
		bases = next
	}
	return bases
}
