package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/born-ml/snapgrad/internal/blob"
	"github.com/born-ml/snapgrad/internal/checkpoint"
)

// Version is the snapgrad version recorded in written files.
const Version = "0.1.0"

// Writer writes checkpoint stacks in .bsnp format.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates a new .bsnp file writer.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for snapshot saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return &Writer{file: file}, nil
}

// WriteStack writes every queue left in stack. The stack is not consumed.
func (w *Writer) WriteStack(stack *checkpoint.Stack) error {
	if w.closed {
		return ErrClosed
	}

	header := Header{
		FormatVersion:   FormatVersion,
		SnapgradVersion: Version,
		StackID:         stack.ID(),
		CreatedAt:       stack.CreatedAt(),
		Queues:          make([]QueueMeta, 0, stack.Len()),
	}

	var (
		blobs  []blob.Blob
		offset int64
		flags  uint32
	)
	for _, q := range stack.Queues() {
		meta := QueueMeta{Blobs: make([]BlobMeta, 0, q.Len())}
		for i := 0; i < q.Len(); i++ {
			b := q.At(i)
			if b.DeclaredLen() == 0 {
				flags |= FlagHasEmptyBlobs
			}
			meta.Blobs = append(meta.Blobs, BlobMeta{Offset: offset, Size: int64(b.Size())})
			offset += int64(b.Size())
			blobs = append(blobs, b)
		}
		header.Queues = append(header.Queues, meta)
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	// Fixed header: magic, version, flags, reserved, header size, data size, checksum.
	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(offset)) //nolint:gosec // G115: offset is a sum of slice lengths
	checksum := checksumBlobs(blobs)
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.file.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	headerEnd := int64(FixedHeaderSize + len(headerJSON))
	if padding := dataOffset(int64(len(headerJSON))) - headerEnd; padding > 0 {
		if _, err := w.file.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	for i, b := range blobs {
		if _, err := w.file.Write(b.Bytes()); err != nil {
			return fmt.Errorf("failed to write blob %d: %w", i, err)
		}
	}

	return nil
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	return w.file.Close()
}

// WriteStack writes stack to a new .bsnp file at path.
func WriteStack(path string, stack *checkpoint.Stack) error {
	w, err := NewWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteStack(stack); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
