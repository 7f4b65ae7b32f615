package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// PrefixSize is the size of the little-endian block length that opens a compressed frame.
	PrefixSize = 4
	// MarkerSize is the size of the trailing marker byte of a compressed frame.
	MarkerSize = 1
)

// Marker values stored in the last byte of a compressed frame.
const (
	// MarkerStored means the block holds the payload verbatim.
	MarkerStored byte = 0
	// MarkerZstd means the block is a zstd frame.
	MarkerZstd byte = 1
)

var (
	// ErrShortFrame is returned when the bytes at an entry offset cannot hold the frame
	// they announce.
	ErrShortFrame = errors.New("frame: truncated entry")
	// ErrUnknownMarker is returned when a compressed frame carries an unknown marker byte.
	ErrUnknownMarker = errors.New("frame: unknown marker")
)

// Frame is the on-disk shape of a single store entry. It is one of Uncompressed or
// Compressed; callers switch on the concrete type.
type Frame interface {
	// Size returns the number of bytes the frame occupies in a data file.
	Size() int
	// AppendTo appends the on-disk encoding of the frame to dst.
	AppendTo(dst []byte) []byte
	// Payload returns the semantic content, without terminator or framing.
	Payload() ([]byte, error)

	isFrame()
}

// Uncompressed is an entry of an uncompressed store: the payload followed by a single
// terminator byte that is not part of the content.
type Uncompressed struct {
	Data []byte
}

// Size implements Frame.
func (u Uncompressed) Size() int { return len(u.Data) + 1 }

// AppendTo implements Frame.
func (u Uncompressed) AppendTo(dst []byte) []byte {
	dst = append(dst, u.Data...)
	return append(dst, 0)
}

// Payload implements Frame.
func (u Uncompressed) Payload() ([]byte, error) { return u.Data, nil }

func (Uncompressed) isFrame() {}

// Compressed is an entry of a compressed store:
//
//	[BlockLen uint32 LE][Block...][Marker]
type Compressed struct {
	Block  []byte
	Marker byte
}

// Size implements Frame.
func (c Compressed) Size() int { return PrefixSize + len(c.Block) + MarkerSize }

// AppendTo implements Frame.
func (c Compressed) AppendTo(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(c.Block)))
	dst = append(dst, c.Block...)
	return append(dst, c.Marker)
}

// Payload implements Frame.
func (c Compressed) Payload() ([]byte, error) {
	switch c.Marker {
	case MarkerStored:
		return c.Block, nil
	case MarkerZstd:
		return decompress(c.Block)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMarker, c.Marker)
	}
}

func (Compressed) isFrame() {}

// Decode reads the frame that starts at raw[0].
//
// raw is the data file view from the entry offset onward; it may extend past the entry.
// For compressed stores the frame size is taken from the block length prefix, never from
// entryLen, because the index length of a compressed entry describes the decoded payload.
// For uncompressed stores entryLen includes the terminator.
func Decode(raw []byte, compressed bool, entryLen uint64) (Frame, error) {
	if compressed {
		if len(raw) < PrefixSize {
			return nil, ErrShortFrame
		}
		n := uint64(binary.LittleEndian.Uint32(raw))
		if uint64(len(raw)) < PrefixSize+n+MarkerSize {
			return nil, ErrShortFrame
		}
		return Compressed{
			Block:  raw[PrefixSize : PrefixSize+n],
			Marker: raw[PrefixSize+n],
		}, nil
	}

	if entryLen > uint64(len(raw)) {
		return nil, ErrShortFrame
	}
	if entryLen == 0 {
		return Uncompressed{}, nil
	}
	return Uncompressed{Data: raw[:entryLen-1]}, nil
}

// Encode returns the on-disk bytes of f.
func Encode(f Frame) []byte {
	return f.AppendTo(make([]byte, 0, f.Size()))
}

// Compress builds a compressed frame for payload. Payloads that zstd cannot shrink are
// stored verbatim under MarkerStored.
func Compress(payload []byte) Compressed {
	block := compress(payload)
	if len(block) >= len(payload) {
		return Compressed{Block: payload, Marker: MarkerStored}
	}
	return Compressed{Block: block, Marker: MarkerZstd}
}
