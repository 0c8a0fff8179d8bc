// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package checkpoint saves and restores the values held by backward nodes.
//
// Save walks a graph in pre-order and pushes one blob queue per serializable
// node onto a Stack. Restore walks a structurally identical graph in the same
// order and pops the queues back into its nodes. Stacks persist to .bsnp
// files with WriteFile and ReadFile.
//
// Example:
//
//	stack, err := checkpoint.Save(a.GradFn())
//	if err != nil {
//	    return err
//	}
//	if err := checkpoint.WriteFile("graph.bsnp", stack); err != nil {
//	    return err
//	}
//	loaded, err := checkpoint.ReadFile("graph.bsnp")
//	if err != nil {
//	    return err
//	}
//	err = checkpoint.Restore(b.GradFn(), loaded)
package checkpoint

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/born-ml/snapgrad/internal/autodiff"
	"github.com/born-ml/snapgrad/internal/checkpoint"
	"github.com/born-ml/snapgrad/internal/serialization"
)

// Stack is an ordered collection of per-node blob queues.
type Stack = checkpoint.Stack

// Option configures Save and Restore.
type Option = checkpoint.Option

// Metrics counts checkpointed nodes, blobs and bytes.
type Metrics = checkpoint.Metrics

// Errors returned by Restore.
var (
	ErrStackExhausted  = checkpoint.ErrStackExhausted
	ErrStackNotDrained = checkpoint.ErrStackNotDrained
	ErrQueueLength     = checkpoint.ErrQueueLength
)

// Save snapshots every serializable node reachable from root.
func Save(root autodiff.Node, opts ...Option) (*Stack, error) {
	return checkpoint.Save(root, opts...)
}

// Restore writes the values in stack back into the graph rooted at root.
// The stack must be fully consumed.
func Restore(root autodiff.Node, stack *Stack, opts ...Option) error {
	return checkpoint.Restore(root, stack, opts...)
}

// Trace lists node names in visiting order.
func Trace(root autodiff.Node) []string {
	return checkpoint.Trace(root)
}

// WithLogger sets the logger for Save and Restore.
func WithLogger(l *slog.Logger) Option {
	return checkpoint.WithLogger(l)
}

// WithMetrics records Save and Restore activity.
func WithMetrics(m *Metrics) Option {
	return checkpoint.WithMetrics(m)
}

// NewMetrics registers checkpoint metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return checkpoint.NewMetrics(reg)
}

// WriteFile persists stack to a .bsnp file.
func WriteFile(path string, stack *Stack) error {
	return serialization.WriteStack(path, stack)
}

// ReadFile loads a stack from a .bsnp file, verifying its checksum.
func ReadFile(path string) (*Stack, error) {
	return serialization.ReadStack(path)
}
