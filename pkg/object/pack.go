package object

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

const (
	packHeaderSize       = 12
	supportedPackVersion = 2
)

var packMagic = [4]byte{'P', 'A', 'C', 'K'}

// PackObjectType is the pack object type encoding used in entry headers.
// Values match the canonical Git wire format.
type PackObjectType uint8

const (
	PackCommit   PackObjectType = 1
	PackTree     PackObjectType = 2
	PackBlob     PackObjectType = 3
	PackTag      PackObjectType = 4
	PackOfsDelta PackObjectType = 6
	PackRefDelta PackObjectType = 7
)

func (t PackObjectType) String() string {
	switch t {
	case PackCommit:
		return "commit"
	case PackTree:
		return "tree"
	case PackBlob:
		return "blob"
	case PackTag:
		return "tag"
	case PackOfsDelta:
		return "ofs-delta"
	case PackRefDelta:
		return "ref-delta"
	}
	return fmt.Sprintf("PackObjectType(%d)", uint8(t))
}

// objectType maps a directly-stored pack type to its object type.
func (t PackObjectType) objectType() (Type, bool) {
	switch t {
	case PackCommit:
		return TypeCommit, true
	case PackTree:
		return TypeTree, true
	case PackBlob:
		return TypeBlob, true
	}
	return 0, false
}

// PackHeader is the fixed-size pack header.
//
// Bytes:
//   - 0..3:  "PACK"
//   - 4..7:  version (big-endian)
//   - 8..11: number of objects (big-endian)
type PackHeader struct {
	Version    uint32
	NumObjects uint32
}

// Marshal serializes the header to the canonical 12-byte pack header.
func (h PackHeader) Marshal() []byte {
	buf := make([]byte, packHeaderSize)
	copy(buf[:4], packMagic[:])
	binary.BigEndian.PutUint32(buf[4:8], h.Version)
	binary.BigEndian.PutUint32(buf[8:12], h.NumObjects)
	return buf
}

// UnmarshalPackHeader parses a canonical pack header.
func UnmarshalPackHeader(data []byte) (*PackHeader, error) {
	if len(data) < packHeaderSize {
		return nil, fmt.Errorf("%w: header too short (%d bytes)", ErrMalformedPack, len(data))
	}
	if !bytes.Equal(data[:4], packMagic[:]) {
		return nil, fmt.Errorf("%w: invalid magic %q", ErrMalformedPack, data[:4])
	}

	version := binary.BigEndian.Uint32(data[4:8])
	if version != supportedPackVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedPack, version)
	}

	return &PackHeader{
		Version:    version,
		NumObjects: binary.BigEndian.Uint32(data[8:12]),
	}, nil
}

// byteCursor owns a buffer and a position into it. All pack and delta
// decoding goes through a cursor so consumed byte counts are never handed
// around as raw indices.
type byteCursor struct {
	buf []byte
	pos int
}

func (c *byteCursor) readByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, fmt.Errorf("%w: unexpected end of input at offset %d", ErrMalformedPack, c.pos)
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

func (c *byteCursor) readBytes(n int) ([]byte, error) {
	if c.pos+n > len(c.buf) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformedPack, n, c.pos, len(c.buf)-c.pos)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *byteCursor) remaining() int {
	return len(c.buf) - c.pos
}

// inflate decompresses one zlib stream starting at the cursor and advances
// the cursor by exactly the compressed bytes consumed. Entries are packed
// back-to-back with no independent length prefix, so the decompressor's
// consumed count is the only way to locate the next entry. bytes.Reader
// implements io.ByteReader, which guarantees the zlib reader does not read
// past the end of its stream.
func (c *byteCursor) inflate() ([]byte, error) {
	sub := bytes.NewReader(c.buf[c.pos:])
	zr, err := zlib.NewReader(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib stream at offset %d: %v", ErrMalformedPack, c.pos, err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		zr.Close()
		return nil, fmt.Errorf("%w: decompress at offset %d: %v", ErrMalformedPack, c.pos, err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("%w: close zlib stream at offset %d: %v", ErrMalformedPack, c.pos, err)
	}
	c.pos += c.remaining() - sub.Len()
	return raw, nil
}

// decodePackEntryHeader decodes the variable-length entry header: the first
// byte carries the type in bits 4-6, the low 4 size bits, and a continuation
// flag in bit 7; each continuation byte contributes 7 more size bits.
func decodePackEntryHeader(c *byteCursor) (PackObjectType, uint64, error) {
	b, err := c.readByte()
	if err != nil {
		return 0, 0, err
	}
	objType := PackObjectType((b >> 4) & 0x7)
	size := uint64(b & 0x0f)
	shift := uint(4)

	for b&0x80 != 0 {
		b, err = c.readByte()
		if err != nil {
			return 0, 0, err
		}
		size |= uint64(b&0x7f) << shift
		shift += 7
	}

	return objType, size, nil
}

// encodePackEntryHeader is the inverse of decodePackEntryHeader.
func encodePackEntryHeader(objType PackObjectType, size uint64) []byte {
	b := byte((objType & 0x7) << 4)
	b |= byte(size & 0x0f)
	size >>= 4

	out := make([]byte, 0, 10)
	if size > 0 {
		b |= 0x80
	}
	out = append(out, b)

	for size > 0 {
		next := byte(size & 0x7f)
		size >>= 7
		if size > 0 {
			next |= 0x80
		}
		out = append(out, next)
	}

	return out
}

// decodeDeltaVarint decodes the 7-bit-per-byte length prefix used inside
// delta payloads. Unlike the entry header, the first byte contributes a full
// 7 bits.
func decodeDeltaVarint(c *byteCursor) (uint64, error) {
	var (
		value uint64
		shift uint
	)
	for {
		b, err := c.readByte()
		if err != nil {
			return 0, err
		}
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return value, nil
		}
		shift += 7
		if shift > 63 {
			return 0, fmt.Errorf("%w: delta varint too large", ErrCorruptDelta)
		}
	}
}

// encodeDeltaVarint is the inverse of decodeDeltaVarint.
func encodeDeltaVarint(v uint64) []byte {
	if v == 0 {
		return []byte{0}
	}
	out := make([]byte, 0, 10)
	for v > 0 {
		b := byte(v & 0x7f)
		v >>= 7
		if v > 0 {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}
