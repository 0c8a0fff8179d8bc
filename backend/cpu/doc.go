// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go compute backend.
//
// Kernels split element-wise work into chunks and run them on a worker per
// chunk once the tensor is large enough. Results are identical to the
// sequential path.
//
// Example:
//
//	backend := cpu.New()
//	rec := autodiff.NewRecorder(backend)
package cpu
