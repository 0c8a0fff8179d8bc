package serialization

import (
	"time"

	"github.com/google/uuid"
)

// Format constants.
const (
	MagicBytes      = "BSNP"
	FormatVersion   = 1
	HeaderAlignment = 64   // Data section starts on a 64-byte boundary
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// Flags for the .bsnp format.
const (
	FlagHasEmptyBlobs uint32 = 1 << 0 // bit 0: at least one zero-length marker blob
)

// Header is the JSON header of a .bsnp file.
type Header struct {
	FormatVersion   int         `json:"format_version"`
	SnapgradVersion string      `json:"snapgrad_version"`
	StackID         uuid.UUID   `json:"stack_id"`
	CreatedAt       time.Time   `json:"created_at"`
	Queues          []QueueMeta `json:"queues"`
}

// QueueMeta describes one blob queue, front blob first.
type QueueMeta struct {
	Blobs []BlobMeta `json:"blobs"`
}

// BlobMeta locates one framed blob in the data section.
type BlobMeta struct {
	Offset int64 `json:"offset"` // Bytes from the start of the data section
	Size   int64 `json:"size"`   // Framed size, length prefix included
}

// BlobCount returns the number of blobs across all queues.
func (h *Header) BlobCount() int {
	n := 0
	for _, q := range h.Queues {
		n += len(q.Blobs)
	}
	return n
}

// dataOffset returns where the data section starts for a JSON header of
// headerSize bytes.
func dataOffset(headerSize int64) int64 {
	end := int64(FixedHeaderSize) + headerSize
	return (end + HeaderAlignment - 1) / HeaderAlignment * HeaderAlignment
}
