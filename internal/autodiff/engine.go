package autodiff

import (
	"fmt"

	"github.com/born-ml/snapgrad/internal/tensor"
)

// Engine runs backward passes over recorded graphs.
type Engine struct {
	backend tensor.Backend
}

// NewEngine creates an engine that computes gradients with backend.
func NewEngine(backend tensor.Backend) *Engine {
	return &Engine{backend: backend}
}

// Backward propagates seed from root through the graph into the leaves'
// accumulated gradients.
//
// Nodes run once all their consumers have run. Unless retainGraph is set,
// each node's saved variables are released after it runs, and a second
// backward over the same graph fails with ErrValueAlreadyConsumed.
func (e *Engine) Backward(root *Variable, seed *tensor.RawTensor, retainGraph bool) error {
	edge := root.GradientEdge()
	if !edge.IsValid() {
		return ErrNoGradient
	}
	if !seed.Shape().Equal(root.data.Shape()) {
		return fmt.Errorf("backward: seed shape %v does not match root shape %v", seed.Shape(), root.data.Shape())
	}
	if seed.DType() != root.data.DType() {
		return fmt.Errorf("backward: seed dtype %s does not match root dtype %s", seed.DType(), root.data.DType())
	}

	deps := countDependencies(edge.Function)
	buffers := make(map[Node][]*tensor.RawTensor)
	e.accumulate(buffers, edge, seed)

	ready := []Node{edge.Function}
	for len(ready) > 0 {
		node := ready[0]
		ready = ready[1:]

		inputs := buffers[node]
		delete(buffers, node)

		var outputs []*tensor.RawTensor
		if inputs != nil {
			var err error
			outputs, err = node.Apply(inputs, e.backend)
			if err != nil {
				return fmt.Errorf("backward: %s: %w", node.Name(), err)
			}
		}
		if !retainGraph {
			node.ReleaseVariables()
		}

		for i, next := range node.NextEdges() {
			if !next.IsValid() {
				continue
			}
			if i < len(outputs) && outputs[i] != nil {
				e.accumulate(buffers, next, outputs[i])
			}
			deps[next.Function]--
			if deps[next.Function] == 0 {
				ready = append(ready, next.Function)
			}
		}
	}

	return nil
}

// accumulate adds grad into the input slot edge points at.
// Stored gradients are shared views, so the backend never writes into a
// tensor another node still reads.
func (e *Engine) accumulate(buffers map[Node][]*tensor.RawTensor, edge Edge, grad *tensor.RawTensor) {
	buf := buffers[edge.Function]
	for len(buf) <= edge.InputNr {
		buf = append(buf, nil)
	}
	if buf[edge.InputNr] == nil {
		buf[edge.InputNr] = grad.Clone()
	} else {
		buf[edge.InputNr] = e.backend.Add(buf[edge.InputNr], grad).Clone()
	}
	buffers[edge.Function] = buf
}

// countDependencies counts, for every node reachable from root, how many
// edges point at it.
func countDependencies(root Node) map[Node]int {
	deps := make(map[Node]int)
	seen := map[Node]bool{root: true}
	stack := []Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range node.NextEdges() {
			if !next.IsValid() {
				continue
			}
			deps[next.Function]++
			if !seen[next.Function] {
				seen[next.Function] = true
				stack = append(stack, next.Function)
			}
		}
	}
	return deps
}
