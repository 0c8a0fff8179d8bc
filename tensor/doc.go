// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the raw tensor runtime the autograd graph is built on.
//
// # Overview
//
// A RawTensor is a shaped, typed view of a reference-counted byte buffer.
// Views created with Clone share the buffer and its version counter, so an
// in-place write through any view is visible to every snapshot of it:
//
//	raw, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, tensor.CPU)
//	view := raw.Clone()
//	raw.MarkMutated()
//	_ = view.Version() // 1
//
// # Supported Data Types
//
//   - float32, float64 (floating-point, the only types the CPU kernels compute on)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers)
//
// # Layouts
//
// Strided tensors are dense and can be checkpointed. Sparse tensors are
// carried through the graph but checkpoint as an empty blob.
package tensor
