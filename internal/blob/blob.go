// Package blob implements the length-prefixed framing used to checkpoint the
// values a backward node saved during the forward pass.
//
// Wire format:
//
//	[8 bytes: payload length (uint64 LE)]
//	[length bytes: raw host payload]
//
// The frame carries no dtype, shape, device or node tag. The consumer must
// apply a blob to a target whose byte length it already knows.
package blob

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/born-ml/snapgrad/internal/tensor"
)

// HeaderSize is the size of the length prefix.
const HeaderSize = 8

// ErrTruncated is returned when a blob is shorter than its header claims.
var ErrTruncated = errors.New("blob truncated")

// Blob is an owned, length-prefixed byte frame.
//
// A Blob has a single owner. Queue.Push and Queue.Pop move it; callers that
// need to keep a copy use Clone.
type Blob struct {
	buf []byte
}

// Encode copies r into host memory and frames its bytes.
func Encode(r *tensor.RawTensor) Blob {
	if r.Device() != tensor.CPU {
		r = r.HostClone()
	}
	return EncodeBytes(r.Data())
}

// EncodeBytes frames a copy of p.
func EncodeBytes(p []byte) Blob {
	buf := make([]byte, HeaderSize+len(p))
	binary.LittleEndian.PutUint64(buf, uint64(len(p)))
	copy(buf[HeaderSize:], p)
	return Blob{buf: buf}
}

// Empty returns the zero-length marker blob.
func Empty() Blob {
	return Blob{buf: make([]byte, HeaderSize)}
}

// FromBytes adopts an already framed buffer. The frame is validated by Decode.
func FromBytes(frame []byte) Blob {
	return Blob{buf: frame}
}

// Decode reads the length prefix and returns a view over the payload.
// The view aliases the blob's memory.
func Decode(b Blob) (uint64, []byte, error) {
	if len(b.buf) < HeaderSize {
		return 0, nil, fmt.Errorf("%w: %d bytes, need at least %d for the header", ErrTruncated, len(b.buf), HeaderSize)
	}
	declared := binary.LittleEndian.Uint64(b.buf)
	payload := b.buf[HeaderSize:]
	if uint64(len(payload)) < declared {
		return 0, nil, fmt.Errorf("%w: header declares %d bytes, %d present", ErrTruncated, declared, len(payload))
	}
	return declared, payload[:declared], nil
}

// DeclaredLen returns the payload length stored in the header, or 0 for a
// blob too short to carry one.
func (b Blob) DeclaredLen() uint64 {
	if len(b.buf) < HeaderSize {
		return 0
	}
	return binary.LittleEndian.Uint64(b.buf)
}

// Size returns the framed size in bytes, header included.
func (b Blob) Size() int {
	return len(b.buf)
}

// Bytes returns the framed bytes. The slice aliases the blob's memory.
func (b Blob) Bytes() []byte {
	return b.buf
}

// Clone returns an independent copy of the blob.
func (b Blob) Clone() Blob {
	return Blob{buf: append([]byte(nil), b.buf...)}
}

// IsZero reports whether b holds no frame at all.
func (b Blob) IsZero() bool {
	return b.buf == nil
}
