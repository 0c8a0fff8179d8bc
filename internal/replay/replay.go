// Package replay runs the save/restore acceptance scenario: record the same
// graph for two inputs, checkpoint the first, restore it into the second and
// check that the second graph's backward pass reproduces the first's
// gradients.
package replay

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/born-ml/snapgrad/internal/autodiff"
	"github.com/born-ml/snapgrad/internal/autodiff/ops"
	"github.com/born-ml/snapgrad/internal/backend/cpu"
	"github.com/born-ml/snapgrad/internal/checkpoint"
	"github.com/born-ml/snapgrad/internal/config"
	"github.com/born-ml/snapgrad/internal/serialization"
	"github.com/born-ml/snapgrad/internal/tensor"
)

// ErrGradientMismatch is returned when the replayed gradients differ.
var ErrGradientMismatch = errors.New("replayed gradients differ from the original")

// tolerance for comparing gradients computed from bit-identical inputs.
const tolerance = 1e-6

// Result reports one replay.
type Result struct {
	Trace   []string  // Walk order of the recorded graph
	StackID uuid.UUID // Identifier of the saved stack
	Queues  [][]int   // Framed blob sizes per queue
	GradA   []float64 // Gradient of input A
	GradB   []float64 // Gradient of input B after restore
}

// Runner executes replays.
type Runner struct {
	logger  *slog.Logger
	metrics *checkpoint.Metrics
}

// NewRunner creates a runner. metrics may be nil.
func NewRunner(logger *slog.Logger, metrics *checkpoint.Metrics) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger, metrics: metrics}
}

// forward records softmax(x * x) along dim 0.
func forward(rec *ops.Recorder, x *autodiff.Variable) *autodiff.Variable {
	return rec.Softmax(rec.Mul(x, x), 0)
}

// Run executes the scenario described by cfg.
func (r *Runner) Run(cfg *config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend := cpu.New()
	rec := ops.NewRecorder(backend)
	engine := autodiff.NewEngine(backend)

	a, err := newLeaf(cfg.DType, cfg.Inputs.A, "a")
	if err != nil {
		return nil, err
	}
	b, err := newLeaf(cfg.DType, cfg.Inputs.B, "b")
	if err != nil {
		return nil, err
	}
	seed, err := newTensor(cfg.DType, cfg.Seed)
	if err != nil {
		return nil, err
	}

	ya := forward(rec, a)
	yb := forward(rec, b)

	res := &Result{Trace: checkpoint.Trace(ya.GradFn())}
	for _, line := range res.Trace {
		r.logger.Debug("graph node", "node", line)
	}

	opts := []checkpoint.Option{checkpoint.WithLogger(r.logger), checkpoint.WithMetrics(r.metrics)}
	stack, err := checkpoint.Save(ya.GradFn(), opts...)
	if err != nil {
		return nil, err
	}
	res.StackID = stack.ID()
	for _, q := range stack.Queues() {
		res.Queues = append(res.Queues, q.Sizes())
	}

	if cfg.Snapshot != "" {
		if stack, err = roundTrip(cfg.Snapshot, stack); err != nil {
			return nil, err
		}
		r.logger.Info("snapshot written", "path", cfg.Snapshot)
	}

	if err := engine.Backward(ya, seed, false); err != nil {
		return nil, fmt.Errorf("backward a: %w", err)
	}
	if err := engine.Backward(yb, seed, true); err != nil {
		return nil, fmt.Errorf("backward b: %w", err)
	}

	if err := checkpoint.Restore(yb.GradFn(), stack, opts...); err != nil {
		return nil, err
	}
	if err := b.Data().CopyFromUntracked(a.Data()); err != nil {
		return nil, fmt.Errorf("copy input: %w", err)
	}
	b.ZeroGrad()
	if err := engine.Backward(yb, seed, true); err != nil {
		return nil, fmt.Errorf("replay b: %w", err)
	}

	res.GradA = values(a.Grad())
	res.GradB = values(b.Grad())
	for i := range res.GradA {
		if d := res.GradA[i] - res.GradB[i]; d > tolerance || d < -tolerance {
			return res, fmt.Errorf("%w: element %d: %g vs %g", ErrGradientMismatch, i, res.GradA[i], res.GradB[i])
		}
	}

	r.logger.Info("replay matched", "stack", res.StackID, "grad", res.GradB)
	return res, nil
}

func roundTrip(path string, stack *checkpoint.Stack) (*checkpoint.Stack, error) {
	if err := serialization.WriteStack(path, stack); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	read, err := serialization.ReadStack(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return read, nil
}

func newLeaf(dtype string, data []float64, name string) (*autodiff.Variable, error) {
	raw, err := newTensor(dtype, data)
	if err != nil {
		return nil, err
	}
	return autodiff.NewLeaf(raw, true).SetName(name), nil
}

func newTensor(dtype string, data []float64) (*tensor.RawTensor, error) {
	shape := tensor.Shape{len(data)}
	if dtype == "float64" {
		return tensor.FromSlice(data, shape, tensor.CPU)
	}
	f32 := make([]float32, len(data))
	for i, v := range data {
		f32[i] = float32(v)
	}
	return tensor.FromSlice(f32, shape, tensor.CPU)
}

func values(r *tensor.RawTensor) []float64 {
	if r.DType() == tensor.Float64 {
		return tensor.ToSlice[float64](r)
	}
	out := make([]float64, r.NumElements())
	for i, v := range r.AsFloat32() {
		out[i] = float64(v)
	}
	return out
}
