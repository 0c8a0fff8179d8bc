package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/born-ml/snapgrad/internal/blob"
	"github.com/born-ml/snapgrad/internal/checkpoint"
)

// Reader provides memory-mapped access to .bsnp files.
// The header is parsed and the data section checksummed when the file is
// opened; blobs are copied out of the mapping on demand.
type Reader struct {
	file       *os.File
	data       []byte // mmap'd region (read-only)
	size       int64
	header     Header
	version    uint32
	flags      uint32
	dataOffset int64
	dataSize   int64
	checksum   [32]byte
	closed     bool
}

// ReaderOptions configures Open.
type ReaderOptions struct {
	SkipChecksumValidation bool // Skip checksum validation (faster but less safe)
}

// Open maps a .bsnp file with default options.
//
// Important: Always call Close() when done to unmap the file (use defer).
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{})
}

// OpenWithOptions maps a .bsnp file.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for snapshot loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.Size() < FixedHeaderSize {
		_ = file.Close()
		return nil, fmt.Errorf("file too small: %d bytes (minimum %d bytes required)", stat.Size(), FixedHeaderSize)
	}

	data, err := mmapFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	r := &Reader{
		file: file,
		data: data,
		size: stat.Size(),
	}

	if err := r.parseHeader(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	if !opts.SkipChecksumValidation {
		section := r.data[r.dataOffset : r.dataOffset+r.dataSize]
		if err := ValidateChecksum(ComputeChecksum(section), r.checksum); err != nil {
			_ = r.Close()
			return nil, err
		}
	}

	return r, nil
}

// parseHeader reads the fixed header and the JSON header from the mapping.
func (r *Reader) parseHeader() error {
	if string(r.data[0:4]) != MagicBytes {
		return ErrInvalidMagic
	}

	r.version = binary.LittleEndian.Uint32(r.data[4:8])
	if r.version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, r.version, FormatVersion)
	}
	r.flags = binary.LittleEndian.Uint32(r.data[8:12])

	headerSize := binary.LittleEndian.Uint64(r.data[16:24])
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}
	dataSize := binary.LittleEndian.Uint64(r.data[24:32])
	copy(r.checksum[:], r.data[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerEnd := int64(FixedHeaderSize) + int64(headerSize) //nolint:gosec // G115: bounded by MaxHeaderSize
	if headerEnd > r.size {
		return fmt.Errorf("header extends beyond file: header_end=%d, file_size=%d", headerEnd, r.size)
	}
	if err := json.Unmarshal(r.data[FixedHeaderSize:headerEnd], &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	r.dataOffset = dataOffset(int64(headerSize)) //nolint:gosec // G115: bounded by MaxHeaderSize
	if r.dataOffset > r.size || dataSize > uint64(r.size-r.dataOffset) {
		return fmt.Errorf("%w: data section of %d bytes at %d, file_size=%d",
			ErrOutOfBounds, dataSize, r.dataOffset, r.size)
	}
	r.dataSize = int64(dataSize) //nolint:gosec // G115: bounded by the file size above

	return ValidateBlobOffsets(&r.header, r.dataSize)
}

// Close unmaps and closes the file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if r.data != nil {
		err = munmapFile(r.data)
		r.data = nil
	}

	if closeErr := r.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// Version returns the format version.
func (r *Reader) Version() uint32 {
	return r.version
}

// Flags returns the flags bitfield.
func (r *Reader) Flags() uint32 {
	return r.flags
}

// Checksum returns the stored SHA-256 of the data section.
func (r *Reader) Checksum() [32]byte {
	return r.checksum
}

// DataSize returns the size of the data section in bytes.
func (r *Reader) DataSize() int64 {
	return r.dataSize
}

// Blob returns a copy of blob bi of queue qi.
func (r *Reader) Blob(qi, bi int) (blob.Blob, error) {
	if r.closed {
		return blob.Blob{}, ErrClosed
	}
	if qi < 0 || qi >= len(r.header.Queues) || bi < 0 || bi >= len(r.header.Queues[qi].Blobs) {
		return blob.Blob{}, fmt.Errorf("%w: no blob %d in queue %d", ErrOutOfBounds, bi, qi)
	}

	meta := r.header.Queues[qi].Blobs[bi]
	start := r.dataOffset + meta.Offset
	frame := r.data[start : start+meta.Size]
	if err := ValidateFrame(frame, qi, bi); err != nil {
		return blob.Blob{}, err
	}
	return blob.FromBytes(frame).Clone(), nil
}

// Stack copies every queue out of the file into a new checkpoint.Stack that
// keeps the recorded identifier and creation time.
func (r *Reader) Stack() (*checkpoint.Stack, error) {
	stack := checkpoint.NewStackWithID(r.header.StackID, r.header.CreatedAt)
	for qi, meta := range r.header.Queues {
		q := blob.NewQueue()
		for bi := range meta.Blobs {
			b, err := r.Blob(qi, bi)
			if err != nil {
				return nil, err
			}
			q.Push(&b)
		}
		stack.Push(q)
	}
	return stack, nil
}

// ReadStack reads the .bsnp file at path into a new checkpoint.Stack.
func ReadStack(path string) (*checkpoint.Stack, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return r.Stack()
}
