package object

import (
	"errors"
	"testing"
)

func TestPackHeaderRoundTrip(t *testing.T) {
	h := PackHeader{Version: 2, NumObjects: 42}
	got, err := UnmarshalPackHeader(h.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalPackHeader: %v", err)
	}
	if *got != h {
		t.Fatalf("header = %+v, want %+v", got, h)
	}
}

func TestUnmarshalPackHeaderRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short", []byte("PACK")},
		{"bad magic", []byte("JUNK\x00\x00\x00\x02\x00\x00\x00\x01")},
		{"bad version", []byte("PACK\x00\x00\x00\x03\x00\x00\x00\x01")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := UnmarshalPackHeader(tc.data); !errors.Is(err, ErrMalformedPack) {
				t.Fatalf("UnmarshalPackHeader = %v, want ErrMalformedPack", err)
			}
		})
	}
}

func TestDecodePackEntryHeaderBoundaries(t *testing.T) {
	// First byte: low 4 size bits plus continuation flag; each continuation
	// byte contributes 7 bits at shift 4+7*(n-1).
	tests := []struct {
		name     string
		data     []byte
		wantType PackObjectType
		wantSize uint64
		wantN    int
	}{
		{"size 0", []byte{0x30}, PackBlob, 0, 1},
		{"size 15 single byte max", []byte{0x3f}, PackBlob, 15, 1},
		{"size 16 first continuation", []byte{0xb0, 0x01}, PackBlob, 16, 2},
		{"size 2047 two byte max", []byte{0xbf, 0x7f}, PackBlob, 2047, 2},
		{"size 2048 second continuation", []byte{0xb0, 0x80, 0x01}, PackBlob, 2048, 3},
		{"commit type", []byte{0x1a}, PackCommit, 10, 1},
		{"ref-delta type", []byte{0x75}, PackRefDelta, 5, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := &byteCursor{buf: tc.data}
			objType, size, err := decodePackEntryHeader(c)
			if err != nil {
				t.Fatalf("decodePackEntryHeader: %v", err)
			}
			if objType != tc.wantType || size != tc.wantSize {
				t.Fatalf("decoded (%s, %d), want (%s, %d)", objType, size, tc.wantType, tc.wantSize)
			}
			if c.pos != tc.wantN {
				t.Fatalf("consumed %d bytes, want %d", c.pos, tc.wantN)
			}
		})
	}
}

func TestPackEntryHeaderRoundTrip(t *testing.T) {
	sizes := []uint64{0, 1, 15, 16, 127, 128, 2047, 2048, 1 << 20}
	for _, size := range sizes {
		enc := encodePackEntryHeader(PackTree, size)
		c := &byteCursor{buf: enc}
		objType, got, err := decodePackEntryHeader(c)
		if err != nil {
			t.Fatalf("size %d: %v", size, err)
		}
		if objType != PackTree || got != size {
			t.Fatalf("size %d round trip: got (%s, %d)", size, objType, got)
		}
		if c.pos != len(enc) {
			t.Fatalf("size %d: consumed %d of %d bytes", size, c.pos, len(enc))
		}
	}
}

func TestDecodePackEntryHeaderTruncated(t *testing.T) {
	c := &byteCursor{buf: []byte{0xb0}} // continuation flag set, no next byte
	if _, _, err := decodePackEntryHeader(c); !errors.Is(err, ErrMalformedPack) {
		t.Fatalf("decodePackEntryHeader = %v, want ErrMalformedPack", err)
	}
}

func TestDecodeDeltaVarintBoundaries(t *testing.T) {
	// First byte contributes a full 7 bits, continuations shift by 7*n.
	tests := []struct {
		name  string
		data  []byte
		want  uint64
		wantN int
	}{
		{"zero", []byte{0x00}, 0, 1},
		{"127 single byte max", []byte{0x7f}, 127, 1},
		{"128 first continuation", []byte{0x80, 0x01}, 128, 2},
		{"16383 two byte max", []byte{0xff, 0x7f}, 16383, 2},
		{"16384 second continuation", []byte{0x80, 0x80, 0x01}, 16384, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := &byteCursor{buf: tc.data}
			got, err := decodeDeltaVarint(c)
			if err != nil {
				t.Fatalf("decodeDeltaVarint: %v", err)
			}
			if got != tc.want {
				t.Fatalf("decoded %d, want %d", got, tc.want)
			}
			if c.pos != tc.wantN {
				t.Fatalf("consumed %d bytes, want %d", c.pos, tc.wantN)
			}
		})
	}
}

func TestDeltaVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 16383, 16384, 1 << 25}
	for _, want := range values {
		enc := encodeDeltaVarint(want)
		c := &byteCursor{buf: enc}
		got, err := decodeDeltaVarint(c)
		if err != nil {
			t.Fatalf("value %d: %v", want, err)
		}
		if got != want {
			t.Fatalf("value %d round trip: got %d", want, got)
		}
		if c.pos != len(enc) {
			t.Fatalf("value %d: consumed %d of %d bytes", want, c.pos, len(enc))
		}
	}
}
