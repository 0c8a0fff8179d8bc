package serialization

import (
	"crypto/sha256"

	"github.com/born-ml/snapgrad/internal/blob"
)

// ComputeChecksum computes SHA-256 checksum of data.
func ComputeChecksum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// checksumBlobs computes the SHA-256 of the blobs' frames laid back to back,
// which is what the data section of a .bsnp file holds.
func checksumBlobs(blobs []blob.Blob) [32]byte {
	h := sha256.New()
	for _, b := range blobs {
		h.Write(b.Bytes())
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// ValidateChecksum compares computed checksum against stored checksum.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(computed, stored [32]byte) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}
