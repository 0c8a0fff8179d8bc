package checkpoint

import (
	"fmt"

	"github.com/born-ml/snapgrad/internal/autodiff"
	"github.com/born-ml/snapgrad/internal/blob"
)

// SerializeNode encodes each of n's saved variables, in order, into a new queue.
func SerializeNode(n autodiff.Node) (*blob.Queue, error) {
	q := blob.NewQueue()
	for i, sv := range n.SavedVariables() {
		b, err := sv.ToBlob()
		if err != nil {
			return nil, fmt.Errorf("saved variable %d: %w", i, err)
		}
		q.Push(&b)
	}
	return q, nil
}

// DeserializeNode pops one blob per saved variable of n, in order, and applies
// it. The queue must hold exactly one blob per saved variable. Every blob is
// checked before any saved variable is written, so a rejected queue leaves n
// untouched.
func DeserializeNode(n autodiff.Node, q *blob.Queue) error {
	saved := n.SavedVariables()
	if q.Len() != len(saved) {
		return fmt.Errorf("%w: %d blobs for %d saved variables", ErrQueueLength, q.Len(), len(saved))
	}
	for i, sv := range saved {
		if err := sv.CheckBlob(q.At(i)); err != nil {
			return fmt.Errorf("saved variable %d: %w", i, err)
		}
	}

	for i, sv := range saved {
		b, _ := q.Pop()
		if err := sv.FromBlob(b); err != nil {
			return fmt.Errorf("saved variable %d: %w", i, err)
		}
	}
	return nil
}
