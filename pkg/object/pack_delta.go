package object

import (
	"bytes"
	"fmt"
)

// applyDelta reconstructs a target object by executing a ref-delta
// instruction stream against the base object's payload.
//
// The stream begins with two varint length prefixes (source and target
// length), then instruction bytes: high bit set means copy — the low 7 bits
// select, in ascending bit order, which little-endian bytes of a 4-byte
// offset (bits 0-3) and 3-byte size (bits 4-6) follow; unset bits are
// implicitly zero and consume nothing. High bit clear means insert the next
// <low 7 bits> literal bytes.
func applyDelta(base, delta []byte) ([]byte, error) {
	c := &byteCursor{buf: delta}

	sourceLen, err := decodeDeltaVarint(c)
	if err != nil {
		return nil, fmt.Errorf("read source length: %w", err)
	}
	if int(sourceLen) != len(base) {
		return nil, fmt.Errorf("%w: source length %d, base is %d bytes", ErrCorruptDelta, sourceLen, len(base))
	}
	targetLen, err := decodeDeltaVarint(c)
	if err != nil {
		return nil, fmt.Errorf("read target length: %w", err)
	}

	out := make([]byte, 0, targetLen)
	for c.remaining() > 0 {
		cmd, err := c.readByte()
		if err != nil {
			return nil, err
		}
		if cmd&0x80 != 0 {
			var offset, size int64
			for bit := 0; bit < 4; bit++ {
				if cmd&(1<<bit) != 0 {
					b, err := c.readByte()
					if err != nil {
						return nil, fmt.Errorf("%w: truncated copy offset: %v", ErrCorruptDelta, err)
					}
					offset |= int64(b) << (8 * bit)
				}
			}
			for bit := 0; bit < 3; bit++ {
				if cmd&(1<<(4+bit)) != 0 {
					b, err := c.readByte()
					if err != nil {
						return nil, fmt.Errorf("%w: truncated copy size: %v", ErrCorruptDelta, err)
					}
					size |= int64(b) << (8 * bit)
				}
			}
			if size == 0 {
				size = 0x10000
			}
			if offset+size > int64(len(base)) {
				return nil, fmt.Errorf("%w: copy [%d, %d) out of base bounds %d", ErrCorruptDelta, offset, offset+size, len(base))
			}
			out = append(out, base[offset:offset+size]...)
			continue
		}

		if cmd == 0 {
			return nil, fmt.Errorf("%w: reserved instruction byte 0", ErrCorruptDelta)
		}
		lit, err := c.readBytes(int(cmd))
		if err != nil {
			return nil, fmt.Errorf("%w: truncated insert of %d bytes: %v", ErrCorruptDelta, cmd, err)
		}
		out = append(out, lit...)
	}

	if uint64(len(out)) != targetLen {
		return nil, fmt.Errorf("%w: produced %d bytes, target length is %d", ErrCorruptDelta, len(out), targetLen)
	}
	return out, nil
}

// buildInsertOnlyDelta returns a valid delta stream encoding the target as
// literal insert chunks. It trades compression for determinism; pack fixtures
// and the writer use it when no copy window is worth emitting.
func buildInsertOnlyDelta(base, target []byte) []byte {
	var out bytes.Buffer
	out.Write(encodeDeltaVarint(uint64(len(base))))
	out.Write(encodeDeltaVarint(uint64(len(target))))

	for pos := 0; pos < len(target); {
		chunk := len(target) - pos
		if chunk > 127 {
			chunk = 127
		}
		out.WriteByte(byte(chunk))
		out.Write(target[pos : pos+chunk])
		pos += chunk
	}
	return out.Bytes()
}
