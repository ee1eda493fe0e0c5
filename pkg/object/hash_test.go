package object

import (
	"bytes"
	"testing"
)

func TestHashObjectKnownVector(t *testing.T) {
	// git hash-object of a file containing "Hello\n".
	h := HashObject(TypeBlob, []byte("Hello\n"))
	if want := Hash("e965047ad7c57865823c7d992b1d046ea66edf78"); h != want {
		t.Fatalf("HashObject = %s, want %s", h, want)
	}
}

func TestHashObjectTypeDistinguishes(t *testing.T) {
	data := []byte("hello")
	if HashObject(TypeBlob, data) == HashObject(TypeCommit, data) {
		t.Error("different types should produce different hashes")
	}
	if HashObject(TypeBlob, data) != HashObject(TypeBlob, data) {
		t.Error("HashObject not deterministic")
	}
}

func TestHashRawRoundTrip(t *testing.T) {
	h := HashObject(TypeBlob, []byte("Hello\n"))
	raw, err := h.Raw()
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	if len(raw) != RawHashSize {
		t.Fatalf("raw length = %d, want %d", len(raw), RawHashSize)
	}
	back, err := HashFromRaw(raw)
	if err != nil {
		t.Fatalf("HashFromRaw: %v", err)
	}
	if back != h {
		t.Fatalf("round trip mismatch: %s != %s", back, h)
	}
}

func TestHashRawRejectsBadInput(t *testing.T) {
	if _, err := Hash("abc").Raw(); err == nil {
		t.Error("short hash should fail")
	}
	if _, err := Hash("zz65047ad7c57865823c7d992b1d046ea66edf78").Raw(); err == nil {
		t.Error("non-hex hash should fail")
	}
	if _, err := HashFromRaw(bytes.Repeat([]byte{0xab}, 19)); err == nil {
		t.Error("short raw digest should fail")
	}
}

func TestParseTypeRoundTrip(t *testing.T) {
	for _, typ := range []Type{TypeBlob, TypeTree, TypeCommit} {
		got, err := ParseType(typ.String())
		if err != nil {
			t.Fatalf("ParseType(%s): %v", typ, err)
		}
		if got != typ {
			t.Fatalf("ParseType(%s) = %v, want %v", typ, got, typ)
		}
	}
	if _, err := ParseType("tag"); err == nil {
		t.Error("tag objects are unsupported and should not parse")
	}
}
