package blob

// Queue is an ordered FIFO of blobs emitted by one node during one walk.
type Queue struct {
	blobs []Blob
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push moves b to the back of the queue. *b is reset to the zero Blob.
func (q *Queue) Push(b *Blob) {
	q.blobs = append(q.blobs, *b)
	*b = Blob{}
}

// Pop moves the front blob out of the queue.
func (q *Queue) Pop() (Blob, bool) {
	if len(q.blobs) == 0 {
		return Blob{}, false
	}
	b := q.blobs[0]
	q.blobs[0] = Blob{}
	q.blobs = q.blobs[1:]
	return b, true
}

// Front returns the front blob without removing it.
func (q *Queue) Front() (Blob, bool) {
	if len(q.blobs) == 0 {
		return Blob{}, false
	}
	return q.blobs[0], true
}

// At returns the i-th blob from the front without removing it.
// The blob shares memory with the queue.
func (q *Queue) At(i int) Blob {
	return q.blobs[i]
}

// Len returns the number of queued blobs.
func (q *Queue) Len() int {
	return len(q.blobs)
}

// TotalBytes returns the framed size of all queued blobs.
func (q *Queue) TotalBytes() int {
	n := 0
	for _, b := range q.blobs {
		n += b.Size()
	}
	return n
}

// Sizes returns the framed size of each queued blob, front first.
func (q *Queue) Sizes() []int {
	sizes := make([]int, len(q.blobs))
	for i, b := range q.blobs {
		sizes[i] = b.Size()
	}
	return sizes
}
