package tensor

import (
	"errors"
	"testing"
)

func TestRawTensorCloneIsShared(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 2}, Float32, CPU)
	raw.AsFloat32()[0] = 1.0

	clone := raw.Clone()

	if clone.AsFloat32()[0] != 1.0 {
		t.Error("Clone should share data")
	}
	if raw.IsUnique() || clone.IsUnique() {
		t.Error("After Clone(), neither tensor should be unique")
	}
	if clone.VersionCounter() != raw.VersionCounter() {
		t.Error("Clone should share the version counter")
	}
}

func TestNewRawAllTypes(t *testing.T) {
	types := []struct {
		dtype       DataType
		elementSize int
	}{
		{Float32, 4},
		{Float64, 8},
		{Int32, 4},
		{Int64, 8},
		{Uint8, 1},
	}

	shape := Shape{2, 3}
	for _, tt := range types {
		raw, err := NewRaw(shape, tt.dtype, CPU)
		if err != nil {
			t.Fatalf("NewRaw(%v, %v) failed: %v", shape, tt.dtype, err)
		}
		if raw.DType() != tt.dtype {
			t.Errorf("DType = %v, want %v", raw.DType(), tt.dtype)
		}
		if raw.ByteSize() != 6*tt.elementSize {
			t.Errorf("ByteSize = %d, want %d for type %v", raw.ByteSize(), 6*tt.elementSize, tt.dtype)
		}
		if raw.Layout() != Strided {
			t.Errorf("Layout = %v, want strided", raw.Layout())
		}
	}
}

func TestNewRawInvalidShape(t *testing.T) {
	invalidShapes := []Shape{
		{0},
		{-1},
		{2, 0},
		{2, -3},
	}

	for _, shape := range invalidShapes {
		if _, err := NewRaw(shape, Float32, CPU); err == nil {
			t.Errorf("NewRaw(%v) should fail but didn't", shape)
		}
	}
}

func TestRawTensorForceNonUnique(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 2}, Float32, CPU)

	if !raw.IsUnique() {
		t.Error("New RawTensor should be unique initially")
	}

	restore := raw.ForceNonUnique()
	if raw.IsUnique() {
		t.Error("After ForceNonUnique(), IsUnique() should return false")
	}

	restore()
	if !raw.IsUnique() {
		t.Error("After cleanup, IsUnique() should return true again")
	}
}

func TestRawTensorAsWrongTypePanics(t *testing.T) {
	raw32, _ := NewRaw(Shape{2}, Float32, CPU)
	_ = raw32.AsFloat32()

	defer func() {
		if r := recover(); r == nil {
			t.Error("AsFloat64 on Float32 tensor should panic")
		}
	}()
	_ = raw32.AsFloat64()
}

func TestRawTensorScalar(t *testing.T) {
	raw, _ := NewRaw(Shape{}, Float32, CPU)

	if raw.NumElements() != 1 {
		t.Errorf("Scalar tensor NumElements = %d, want 1", raw.NumElements())
	}
	if raw.ByteSize() != 4 {
		t.Errorf("Scalar tensor ByteSize = %d, want 4", raw.ByteSize())
	}
}

func TestRawTensorCopyFromBumpsVersion(t *testing.T) {
	dst, _ := FromSlice([]float32{0, 0, 0}, Shape{3}, CPU)
	src, _ := FromSlice([]float32{1, 2, 3}, Shape{3}, CPU)

	if err := dst.CopyFrom(src); err != nil {
		t.Fatalf("CopyFrom failed: %v", err)
	}
	if dst.Version() != 1 {
		t.Errorf("Version = %d, want 1", dst.Version())
	}
	if got := ToSlice[float32](dst); got[2] != 3 {
		t.Errorf("CopyFrom data = %v, want [1 2 3]", got)
	}
}

func TestRawTensorCopyFromUntrackedKeepsVersion(t *testing.T) {
	dst, _ := FromSlice([]float32{0, 0, 0}, Shape{3}, CPU)
	src, _ := FromSlice([]float32{4, 5, 6}, Shape{3}, CPU)
	dst.MarkMutated()

	if err := dst.CopyFromUntracked(src); err != nil {
		t.Fatalf("CopyFromUntracked failed: %v", err)
	}
	if dst.Version() != 1 {
		t.Errorf("Version = %d, want 1 (untracked copy must not bump)", dst.Version())
	}
	if got := ToSlice[float32](dst); got[0] != 4 {
		t.Errorf("CopyFromUntracked data = %v, want [4 5 6]", got)
	}
}

func TestRawTensorCopyByteLengthMismatch(t *testing.T) {
	dst, _ := FromSlice([]float32{7, 7, 7}, Shape{3}, CPU)
	src, _ := FromSlice([]float32{1, 2}, Shape{2}, CPU)

	err := dst.CopyFrom(src)
	if !errors.Is(err, ErrByteLength) {
		t.Fatalf("expected ErrByteLength, got %v", err)
	}
	if got := ToSlice[float32](dst); got[0] != 7 || got[1] != 7 || got[2] != 7 {
		t.Errorf("destination modified on failed copy: %v", got)
	}
	if dst.Version() != 0 {
		t.Errorf("Version = %d, want 0 after failed copy", dst.Version())
	}
}

func TestRawTensorHostClone(t *testing.T) {
	src, _ := FromSlice([]float64{1.5, -2}, Shape{2}, Metal)
	src.MarkMutated()

	host := src.HostClone()
	if host.Device() != CPU {
		t.Errorf("HostClone device = %v, want CPU", host.Device())
	}
	if host.Version() != 0 {
		t.Errorf("HostClone version = %d, want 0", host.Version())
	}

	host.AsFloat64()[0] = 99
	if src.AsFloat64()[0] != 1.5 {
		t.Error("HostClone must not share the source buffer")
	}
}

func TestRawTensorWithVersion(t *testing.T) {
	raw, _ := FromSlice([]float32{1}, Shape{1}, CPU)
	view := raw.WithVersion(5)

	if view.Version() != 5 {
		t.Errorf("WithVersion = %d, want 5", view.Version())
	}
	if raw.Version() != 0 {
		t.Errorf("source version changed to %d", raw.Version())
	}

	view.AsFloat32()[0] = 2
	if raw.AsFloat32()[0] != 2 {
		t.Error("WithVersion view should share the buffer")
	}
}

func TestValuesWrongTypePanics(t *testing.T) {
	raw := Zeros[float32](Shape{2}, CPU)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Values[float64] on Float32 tensor should panic")
		}
	}()
	_ = Values[float64](raw)
}
