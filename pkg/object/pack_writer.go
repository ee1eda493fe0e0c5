package object

import (
	"crypto/sha1"
	"fmt"
	"hash"
	"io"

	"github.com/klauspost/compress/zlib"
)

// PackWriter produces a pack stream: header, back-to-back entries with
// varint headers and zlib-compressed payloads, and a trailing SHA-1 checksum
// over everything before it. It backs local pack fixtures and repacking;
// this client never uploads packs.
type PackWriter struct {
	w       io.Writer
	digest  hash.Hash
	total   uint32
	written uint32
	closed  bool
}

// NewPackWriter writes the pack header for numObjects entries and returns a
// writer positioned at the first entry.
func NewPackWriter(w io.Writer, numObjects uint32) (*PackWriter, error) {
	pw := &PackWriter{w: w, digest: sha1.New(), total: numObjects}
	header := PackHeader{Version: supportedPackVersion, NumObjects: numObjects}.Marshal()
	if err := pw.writeRaw(header); err != nil {
		return nil, fmt.Errorf("write pack header: %w", err)
	}
	return pw, nil
}

// WriteEntry appends one directly-stored (non-delta) entry.
func (pw *PackWriter) WriteEntry(t PackObjectType, data []byte) error {
	if _, ok := t.objectType(); !ok {
		return fmt.Errorf("write pack entry: type %s is not directly storable", t)
	}
	return pw.writeEntry(t, nil, data)
}

// WriteRefDelta appends a ref-delta entry against baseHash, encoding target
// as an insert-only delta stream.
func (pw *PackWriter) WriteRefDelta(baseHash Hash, base, target []byte) error {
	raw, err := baseHash.Raw()
	if err != nil {
		return fmt.Errorf("write ref-delta: %w", err)
	}
	return pw.writeEntry(PackRefDelta, raw, buildInsertOnlyDelta(base, target))
}

func (pw *PackWriter) writeEntry(t PackObjectType, baseRef, payload []byte) error {
	if pw.closed {
		return fmt.Errorf("write pack entry: writer is closed")
	}
	if pw.written >= pw.total {
		return fmt.Errorf("write pack entry: %d entries already written", pw.total)
	}
	if err := pw.writeRaw(encodePackEntryHeader(t, uint64(len(payload)))); err != nil {
		return fmt.Errorf("write entry header: %w", err)
	}
	if len(baseRef) > 0 {
		if err := pw.writeRaw(baseRef); err != nil {
			return fmt.Errorf("write base ref: %w", err)
		}
	}

	zw := zlib.NewWriter(io.MultiWriter(pw.w, pw.digest))
	if _, err := zw.Write(payload); err != nil {
		return fmt.Errorf("compress entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush entry: %w", err)
	}

	pw.written++
	return nil
}

// Close writes the trailing checksum. It fails if fewer entries were written
// than the header declared.
func (pw *PackWriter) Close() error {
	if pw.closed {
		return nil
	}
	if pw.written != pw.total {
		return fmt.Errorf("close pack: wrote %d of %d entries", pw.written, pw.total)
	}
	pw.closed = true
	if _, err := pw.w.Write(pw.digest.Sum(nil)); err != nil {
		return fmt.Errorf("write pack checksum: %w", err)
	}
	return nil
}

func (pw *PackWriter) writeRaw(b []byte) error {
	if _, err := pw.w.Write(b); err != nil {
		return err
	}
	pw.digest.Write(b)
	return nil
}
