// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"github.com/born-ml/snapgrad/internal/backend/cpu"
	"github.com/born-ml/snapgrad/internal/parallel"
)

// Backend is the CPU implementation of tensor.Backend.
type Backend = cpu.CPUBackend

// ParallelConfig controls how kernels split work across goroutines.
type ParallelConfig = parallel.Config

// New creates a CPU backend with the default parallel configuration.
func New() *Backend {
	return cpu.New()
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg ParallelConfig) *Backend {
	return cpu.NewWithConfig(cfg)
}

// Sequential returns a configuration that runs every kernel on the calling goroutine.
func Sequential() ParallelConfig {
	return parallel.Sequential()
}
