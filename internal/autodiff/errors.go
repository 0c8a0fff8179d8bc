package autodiff

import "errors"

// Errors returned while capturing, restoring and replaying saved variables.
var (
	ErrValueAlreadyConsumed = errors.New("saved value already freed: backward ran twice without retaining the graph")
	ErrMissingProducer      = errors.New("no producer for non-leaf saved variable")
	ErrMissingAccumulator   = errors.New("no gradient accumulator for a saved leaf")
	ErrStaleVersion         = errors.New("saved variable was modified by an inplace operation")
	ErrShapeMismatch        = errors.New("saved variable shape mismatch")
	ErrSizeMismatch         = errors.New("blob size mismatch")
	ErrNoGradient           = errors.New("variable does not require grad and has no producer")
)
