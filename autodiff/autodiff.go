// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff records differentiable computations as a DAG of backward
// nodes and runs reverse-mode differentiation over it.
//
// Every backward node holds snapshots (SavedVariable) of the values its
// gradient formula needs. A snapshot remembers the version of its buffer at
// capture time, so unpacking after an in-place write fails with
// ErrStaleVersion instead of silently producing a wrong gradient.
//
// Example:
//
//	rec := autodiff.NewRecorder(cpu.New())
//	x := autodiff.NewLeaf(raw, true)
//	y := rec.Softmax(rec.Mul(x, x), 0)
//	err := autodiff.NewEngine(rec.Backend()).Backward(y, seed, false)
package autodiff

import (
	"log/slog"

	"github.com/born-ml/snapgrad/internal/autodiff"
	"github.com/born-ml/snapgrad/internal/autodiff/ops"
	"github.com/born-ml/snapgrad/internal/tensor"
)

// Variable is a tensor tracked by the autograd graph.
type Variable = autodiff.Variable

// Node is a backward function in the graph.
type Node = autodiff.Node

// Edge points at an input slot of a backward node.
type Edge = autodiff.Edge

// SavedVariable is a versioned snapshot held by a backward node.
type SavedVariable = autodiff.SavedVariable

// Engine runs the backward pass.
type Engine = autodiff.Engine

// Recorder builds forward results and their backward nodes.
type Recorder = ops.Recorder

// Errors returned while unpacking or restoring saved variables.
var (
	ErrValueAlreadyConsumed = autodiff.ErrValueAlreadyConsumed
	ErrMissingProducer      = autodiff.ErrMissingProducer
	ErrMissingAccumulator   = autodiff.ErrMissingAccumulator
	ErrStaleVersion         = autodiff.ErrStaleVersion
	ErrShapeMismatch        = autodiff.ErrShapeMismatch
	ErrSizeMismatch         = autodiff.ErrSizeMismatch
	ErrNoGradient           = autodiff.ErrNoGradient
)

// NewLeaf creates a graph leaf.
func NewLeaf(data *tensor.RawTensor, requiresGrad bool) *Variable {
	return autodiff.NewLeaf(data, requiresGrad)
}

// NewEngine creates a backward engine on the given backend.
func NewEngine(backend tensor.Backend) *Engine {
	return autodiff.NewEngine(backend)
}

// NewRecorder creates a recorder computing forward values on backend.
func NewRecorder(backend tensor.Backend) *Recorder {
	return ops.NewRecorder(backend)
}

// NoGrad runs fn without recording backward nodes.
func NoGrad(fn func() error) error {
	return autodiff.NoGrad(fn)
}

// GradEnabled reports whether graph recording is on.
func GradEnabled() bool {
	return autodiff.GradEnabled()
}

// SetDetectAnomaly toggles the extra hint on stale-version errors.
func SetDetectAnomaly(enabled bool) {
	autodiff.SetDetectAnomaly(enabled)
}

// SetLogger replaces the logger used for degraded snapshot paths.
func SetLogger(l *slog.Logger) {
	autodiff.SetLogger(l)
}
