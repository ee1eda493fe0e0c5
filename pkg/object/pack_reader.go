package object

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// PackSummary reports the outcome of IndexPack.
type PackSummary struct {
	Objects  int  // entries stored, deltas included
	Deltas   int  // ref-delta entries reconstructed
	Checksum Hash // trailing pack checksum
}

// IndexPack decodes a full pack stream and stores every entry in the store.
//
// The stream is walked with a single cursor: each entry's varint header is
// decoded, ref-delta entries additionally read a fixed 20-byte base hash,
// then the compressed payload is inflated and the cursor advanced by exactly
// the compressed bytes consumed. commit/tree/blob entries are stored under
// their pack type; ref-delta entries resolve their base from the store,
// apply the delta, and are stored under the base object's type. tag and
// offset-delta entries abort with ErrUnsupportedEntry — skipping them
// without consuming their payload would desynchronize every entry after
// them.
//
// The trailing SHA-1 checksum is verified before any entry is decoded.
func IndexPack(data []byte, store *Store) (*PackSummary, error) {
	if len(data) < packHeaderSize+RawHashSize {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrMalformedPack, len(data))
	}

	payload := data[:len(data)-RawHashSize]
	trailer := data[len(data)-RawHashSize:]

	sum := sha1.Sum(payload)
	if !bytes.Equal(sum[:], trailer) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrMalformedPack)
	}

	header, err := UnmarshalPackHeader(payload[:packHeaderSize])
	if err != nil {
		return nil, err
	}

	c := &byteCursor{buf: payload, pos: packHeaderSize}
	summary := &PackSummary{Checksum: Hash(hex.EncodeToString(trailer))}

	for i := uint32(0); i < header.NumObjects; i++ {
		packType, declaredSize, err := decodePackEntryHeader(c)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		switch packType {
		case PackCommit, PackTree, PackBlob:
			raw, err := c.inflate()
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			if uint64(len(raw)) != declaredSize {
				return nil, fmt.Errorf("entry %d: %w: declared size %d, inflated %d", i, ErrMalformedPack, declaredSize, len(raw))
			}
			t, _ := packType.objectType()
			if _, err := store.Write(t, raw); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}

		case PackRefDelta:
			baseRaw, err := c.readBytes(RawHashSize)
			if err != nil {
				return nil, fmt.Errorf("entry %d: base hash: %w", i, err)
			}
			baseHash, err := HashFromRaw(baseRaw)
			if err != nil {
				return nil, fmt.Errorf("entry %d: base hash: %w", i, err)
			}
			delta, err := c.inflate()
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			if uint64(len(delta)) != declaredSize {
				return nil, fmt.Errorf("entry %d: %w: declared size %d, inflated %d", i, ErrMalformedPack, declaredSize, len(delta))
			}

			baseType, basePayload, err := store.Read(baseHash)
			if err != nil {
				return nil, fmt.Errorf("entry %d: resolve delta base: %w", i, err)
			}
			target, err := applyDelta(basePayload, delta)
			if err != nil {
				return nil, fmt.Errorf("entry %d: delta against %s: %w", i, baseHash, err)
			}
			// Delta entries inherit the base object's type, not the pack
			// entry framing.
			if _, err := store.Write(baseType, target); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			summary.Deltas++

		case PackTag, PackOfsDelta:
			return nil, fmt.Errorf("entry %d: %w: %s", i, ErrUnsupportedEntry, packType)

		default:
			return nil, fmt.Errorf("entry %d: %w: unknown entry type %d", i, ErrMalformedPack, packType)
		}

		summary.Objects++
	}

	if c.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d undecoded bytes before checksum", ErrMalformedPack, c.remaining())
	}
	return summary, nil
}
