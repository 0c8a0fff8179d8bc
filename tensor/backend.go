// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/snapgrad/internal/tensor"

// Backend is the set of kernels the autograd graph computes with.
//
// Implementations:
//   - backend/cpu: pure Go, optionally parallel
type Backend = tensor.Backend
