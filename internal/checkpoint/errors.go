package checkpoint

import "errors"

// Errors returned while pairing saved queues with nodes.
var (
	ErrStackExhausted  = errors.New("snapshot stack exhausted")
	ErrStackNotDrained = errors.New("snapshot stack not drained")
	ErrQueueLength     = errors.New("blob queue length does not match saved variables")
)
