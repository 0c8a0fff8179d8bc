package checkpoint

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/snapgrad/internal/autodiff"
	"github.com/born-ml/snapgrad/internal/blob"
)

// Stack is the ordered result of one Save: one blob queue per serializable
// node visit. Queues are consumed front first.
type Stack struct {
	id        uuid.UUID
	createdAt time.Time
	queues    []*blob.Queue
}

// NewStack creates an empty stack with a fresh identifier.
func NewStack() *Stack {
	return NewStackWithID(uuid.New(), time.Now().UTC())
}

// NewStackWithID creates an empty stack with a known identity, as read back
// from a snapshot file.
func NewStackWithID(id uuid.UUID, createdAt time.Time) *Stack {
	return &Stack{id: id, createdAt: createdAt}
}

// ID returns the stack identifier.
func (s *Stack) ID() uuid.UUID {
	return s.id
}

// CreatedAt returns when the stack was created.
func (s *Stack) CreatedAt() time.Time {
	return s.createdAt
}

// Push appends q.
func (s *Stack) Push(q *blob.Queue) {
	s.queues = append(s.queues, q)
}

// Pop removes and returns the front queue.
func (s *Stack) Pop() (*blob.Queue, error) {
	if len(s.queues) == 0 {
		return nil, ErrStackExhausted
	}
	q := s.queues[0]
	s.queues[0] = nil
	s.queues = s.queues[1:]
	return q, nil
}

// Len returns the number of queues left.
func (s *Stack) Len() int {
	return len(s.queues)
}

// Queues returns the remaining queues, front first. The queues are shared
// with the stack.
func (s *Stack) Queues() []*blob.Queue {
	return s.queues
}

// TotalBytes returns the framed size of every blob left in the stack.
func (s *Stack) TotalBytes() int {
	n := 0
	for _, q := range s.queues {
		n += q.TotalBytes()
	}
	return n
}

// Sequencer hands a Stack's queues to the serializable nodes of a restore
// walk, one queue per node, in order.
type Sequencer struct {
	stack *Stack
	pairs int
}

// NewSequencer creates a sequencer consuming stack.
func NewSequencer(stack *Stack) *Sequencer {
	return &Sequencer{stack: stack}
}

// Pair describes one queue applied to one node.
type Pair struct {
	Node  string
	Blobs int
	Bytes int
}

// Next pops the next queue and applies it to n.
func (s *Sequencer) Next(n autodiff.Node) (Pair, error) {
	q, err := s.stack.Pop()
	if err != nil {
		return Pair{}, fmt.Errorf("%w after %d queues", err, s.pairs)
	}
	p := Pair{Node: n.Name(), Blobs: q.Len(), Bytes: q.TotalBytes()}
	if err := DeserializeNode(n, q); err != nil {
		return Pair{}, err
	}
	s.pairs++
	return p, nil
}

// Pairs returns how many node/queue pairs have been applied.
func (s *Sequencer) Pairs() int {
	return s.pairs
}

// Finish reports ErrStackNotDrained if queues remain.
func (s *Sequencer) Finish() error {
	if n := s.stack.Len(); n > 0 {
		return fmt.Errorf("%w: %d queues left after %d pairs", ErrStackNotDrained, n, s.pairs)
	}
	return nil
}
