package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// RawHashSize is the size of a raw SHA-1 digest in bytes.
const RawHashSize = sha1.Size

// HashObject computes the SHA-1 of the envelope "type len\0content". This is
// the content identity for every object: the same type and payload always
// produce the same hash.
func HashObject(t Type, data []byte) Hash {
	h := sha1.New()
	fmt.Fprintf(h, "%s %d\x00", t, len(data))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// HashFromRaw converts a raw 20-byte digest into its hex Hash form.
func HashFromRaw(raw []byte) (Hash, error) {
	if len(raw) != RawHashSize {
		return "", fmt.Errorf("raw hash length %d, expected %d", len(raw), RawHashSize)
	}
	return Hash(hex.EncodeToString(raw)), nil
}

// Raw returns the 20 raw digest bytes of h.
func (h Hash) Raw() ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(string(h))
	if err != nil {
		return nil, fmt.Errorf("hash contains non-hex characters: %w", err)
	}
	return raw, nil
}

// Validate checks that h is a well-formed 40-character hex digest.
func (h Hash) Validate() error {
	if len(h) != 2*RawHashSize {
		return fmt.Errorf("hash length %d, expected %d", len(h), 2*RawHashSize)
	}
	if _, err := hex.DecodeString(string(h)); err != nil {
		return fmt.Errorf("hash contains non-hex characters: %w", err)
	}
	return nil
}
