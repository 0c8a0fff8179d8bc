package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrOffsetOverlap      = errors.New("blob offsets overlap")
	ErrOutOfBounds        = errors.New("blob extends beyond data section")
	ErrNegativeOffset     = errors.New("negative offset or size")
	ErrTooManyBlobs       = errors.New("too many blobs in file")
	ErrMalformedBlob      = errors.New("blob frame does not match its recorded size")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrClosed             = errors.New("file is closed")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Err     error  // Sentinel the failure matches
	Queue   int    // Queue index
	Blob    int    // Blob index within the queue
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: queue %d blob %d: %s", e.Err, e.Queue, e.Blob, e.Details)
}

// Unwrap returns the sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
