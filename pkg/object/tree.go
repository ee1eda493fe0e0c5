package object

import (
	"bytes"
	"fmt"
	"strings"
)

// MarshalTree serializes tree entries to the canonical binary payload.
// Each entry is "<mode> <name>\0" followed by the raw 20-byte child hash.
// Entries must already be sorted by name in byte-wise ascending order;
// MarshalTree refuses unsorted input rather than silently producing a tree
// that hashes differently from its canonical form.
func MarshalTree(entries []TreeEntry) ([]byte, error) {
	var buf bytes.Buffer
	for i, e := range entries {
		if i > 0 && entries[i-1].Name >= e.Name {
			return nil, fmt.Errorf("marshal tree: entries not sorted (%q >= %q)", entries[i-1].Name, e.Name)
		}
		raw, err := e.Hash.Raw()
		if err != nil {
			return nil, fmt.Errorf("marshal tree: entry %q: %w", e.Name, err)
		}
		mode, err := normalizeTreeMode(e.Mode)
		if err != nil {
			return nil, fmt.Errorf("marshal tree: entry %q: %w", e.Name, err)
		}
		if !validTreeEntryName(e.Name) {
			return nil, fmt.Errorf("marshal tree: invalid entry name %q", e.Name)
		}
		fmt.Fprintf(&buf, "%s %s\x00", mode, e.Name)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a tree payload into its entries. The child hash
// bytes are binary and may contain any value, including NUL.
func UnmarshalTree(data []byte) ([]TreeEntry, error) {
	var entries []TreeEntry
	for pos := 0; pos < len(data); {
		rest := data[pos:]
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("unmarshal tree: %w: no mode separator at offset %d", ErrCorruptObject, pos)
		}
		nul := bytes.IndexByte(rest[sp+1:], 0)
		if nul < 0 {
			return nil, fmt.Errorf("unmarshal tree: %w: unterminated name at offset %d", ErrCorruptObject, pos)
		}
		mode, err := normalizeTreeMode(string(rest[:sp]))
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w: %v", ErrCorruptObject, err)
		}
		name := string(rest[sp+1 : sp+1+nul])
		if !validTreeEntryName(name) {
			return nil, fmt.Errorf("unmarshal tree: %w: invalid entry name %q at offset %d", ErrCorruptObject, name, pos)
		}

		hashStart := sp + 1 + nul + 1
		if hashStart+RawHashSize > len(rest) {
			return nil, fmt.Errorf("unmarshal tree: %w: truncated hash for %q", ErrCorruptObject, name)
		}
		h, err := HashFromRaw(rest[hashStart : hashStart+RawHashSize])
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w: %v", ErrCorruptObject, err)
		}

		entries = append(entries, TreeEntry{Mode: mode, Name: name, Hash: h})
		pos += hashStart + RawHashSize
	}
	return entries, nil
}

// validTreeEntryName rejects names that would escape the directory the
// entry materializes into. Tree payloads arrive from untrusted remotes, so
// a name is exactly one path component: no separators, no "." or "..".
func validTreeEntryName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}

// normalizeTreeMode maps an octal mode token to its canonical constant.
// Directory modes appear both with and without the leading zero in the wild.
func normalizeTreeMode(mode string) (string, error) {
	switch strings.TrimSpace(mode) {
	case TreeModeDir, "040000":
		return TreeModeDir, nil
	case TreeModeFile:
		return TreeModeFile, nil
	case TreeModeExecutable:
		return TreeModeExecutable, nil
	}
	return "", fmt.Errorf("unknown tree mode %q", mode)
}
