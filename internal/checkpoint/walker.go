// Package checkpoint saves the values cached by a recorded backward graph and
// restores them into an isomorphic graph.
//
// Save walks the graph from its root in pre-order and, for every node that
// can serialize, encodes the node's saved variables into one blob queue.
// Restore walks a graph of the same shape in the same order and hands the
// queues back one by one:
//
//	stack, err := checkpoint.Save(a.GradFn())
//	...
//	err = checkpoint.Restore(b.GradFn(), stack)
//
// Queues carry no node identity. Pairing relies entirely on both graphs
// producing the same visit order, so the graphs must have the same node
// sequence and the same edge order.
//
// Shared ancestors are visited once per path that reaches them, so a node
// reachable along two paths is saved twice and restored twice.
package checkpoint

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/snapgrad/internal/autodiff"
)

// Visitor is called for every node reached by Walk.
type Visitor interface {
	Visit(n autodiff.Node) error
}

// VisitorFunc adapts a function to Visitor.
type VisitorFunc func(n autodiff.Node) error

// Visit calls f(n).
func (f VisitorFunc) Visit(n autodiff.Node) error {
	return f(n)
}

// Walk visits root and then, recursively, every producer reachable through
// its next edges, in edge order. Nodes are not memoized: a node reached by
// several paths is visited once per path. A nil root is a no-op.
//
// The first Visit error stops the walk and is returned wrapped with the
// node's name.
func Walk(root autodiff.Node, v Visitor) error {
	if root == nil {
		return nil
	}

	stack := []autodiff.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := v.Visit(n); err != nil {
			return fmt.Errorf("%s: %w", n.Name(), err)
		}

		// Push in reverse so the first edge is visited first.
		edges := n.NextEdges()
		for i := len(edges) - 1; i >= 0; i-- {
			if edges[i].IsValid() {
				stack = append(stack, edges[i].Function)
			}
		}
	}
	return nil
}

// Trace returns the names of the nodes Walk visits, in order. Nodes that can
// serialize are marked with a "[serializable]" suffix.
func Trace(root autodiff.Node) []string {
	var names []string
	_ = Walk(root, VisitorFunc(func(n autodiff.Node) error {
		names = append(names, traceName(n))
		return nil
	}))
	return names
}

func traceName(n autodiff.Node) string {
	if n.CanSerialize() {
		return n.Name() + " [serializable]"
	}
	return n.Name()
}

// Option configures Save and Restore.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *Metrics
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records counters into m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Save encodes the saved variables of every serializable node reachable from
// root into a new Stack, one queue per visit, in walk order.
func Save(root autodiff.Node, opts ...Option) (*Stack, error) {
	o := buildOptions(opts)
	stack := NewStack()

	err := Walk(root, VisitorFunc(func(n autodiff.Node) error {
		o.logger.Debug("checkpoint visit", "op", "save", "node", traceName(n))
		if !n.CanSerialize() {
			return nil
		}

		q, err := SerializeNode(n)
		if err != nil {
			return err
		}
		o.metrics.observe("save", q.Len(), q.TotalBytes())
		stack.Push(q)
		return nil
	}))
	if err != nil {
		o.metrics.failure("save")
		return nil, fmt.Errorf("checkpoint save: %w", err)
	}

	o.logger.Info("checkpoint saved",
		"stack", stack.ID(), "queues", stack.Len(), "bytes", stack.TotalBytes())
	return stack, nil
}

// Restore applies stack to the graph rooted at root.
//
// Every serializable node visited consumes the next queue. The stack must be
// fully drained by the walk, otherwise ErrStackNotDrained is returned. On any
// error the stack is left partially consumed and must be discarded.
func Restore(root autodiff.Node, stack *Stack, opts ...Option) error {
	o := buildOptions(opts)
	if stack == nil {
		return fmt.Errorf("checkpoint restore: nil stack: %w", ErrStackExhausted)
	}
	seq := NewSequencer(stack)

	err := Walk(root, VisitorFunc(func(n autodiff.Node) error {
		o.logger.Debug("checkpoint visit", "op", "restore", "node", traceName(n))
		if !n.CanSerialize() {
			return nil
		}

		p, err := seq.Next(n)
		if err != nil {
			return err
		}
		o.metrics.observe("restore", p.Blobs, p.Bytes)
		return nil
	}))
	if err == nil {
		err = seq.Finish()
	}
	if err != nil {
		o.metrics.failure("restore")
		return fmt.Errorf("checkpoint restore: %w", err)
	}

	o.logger.Info("checkpoint restored", "stack", stack.ID(), "queues", seq.Pairs())
	return nil
}
