package serialization

import (
	"fmt"

	"github.com/born-ml/snapgrad/internal/blob"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize = 100 * 1024 * 1024 // 100MB - maximum header size
	MaxBlobCount  = 1_000_000         // Maximum number of blobs in a file
)

// ValidateBlobOffsets checks that blobs lie inside the data section in header
// order without overlapping.
func ValidateBlobOffsets(h *Header, dataSize int64) error {
	if n := h.BlobCount(); n > MaxBlobCount {
		return fmt.Errorf("%w: got %d, max %d", ErrTooManyBlobs, n, MaxBlobCount)
	}

	var next int64
	for qi, q := range h.Queues {
		for bi, b := range q.Blobs {
			if b.Offset < 0 || b.Size < 0 {
				return &ValidationError{
					Err:     ErrNegativeOffset,
					Queue:   qi,
					Blob:    bi,
					Details: fmt.Sprintf("offset=%d, size=%d", b.Offset, b.Size),
				}
			}
			if b.Offset < next {
				return &ValidationError{
					Err:     ErrOffsetOverlap,
					Queue:   qi,
					Blob:    bi,
					Details: fmt.Sprintf("offset %d starts before end of previous blob %d", b.Offset, next),
				}
			}
			if b.Offset+b.Size > dataSize {
				return &ValidationError{
					Err:     ErrOutOfBounds,
					Queue:   qi,
					Blob:    bi,
					Details: fmt.Sprintf("offset %d + size %d > data_size %d", b.Offset, b.Size, dataSize),
				}
			}
			next = b.Offset + b.Size
		}
	}
	return nil
}

// ValidateFrame checks that a framed blob's length prefix agrees with the
// size recorded for it in the header.
func ValidateFrame(frame []byte, qi, bi int) error {
	b := blob.FromBytes(frame)
	if len(frame) < blob.HeaderSize || b.DeclaredLen() != uint64(len(frame)-blob.HeaderSize) {
		return &ValidationError{
			Err:     ErrMalformedBlob,
			Queue:   qi,
			Blob:    bi,
			Details: fmt.Sprintf("frame of %d bytes declares %d payload bytes", len(frame), b.DeclaredLen()),
		}
	}
	return nil
}
