package object

import (
	"errors"
	"fmt"
)

// Hash is a 40-character hex-encoded SHA-1 digest.
type Hash string

// Type identifies the kind of object stored.
type Type uint8

const (
	TypeBlob Type = iota + 1
	TypeTree
	TypeCommit
)

// String returns the canonical wire/disk token for the type.
func (t Type) String() string {
	switch t {
	case TypeBlob:
		return "blob"
	case TypeTree:
		return "tree"
	case TypeCommit:
		return "commit"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ParseType maps a wire/disk type token to a Type.
func ParseType(raw string) (Type, error) {
	switch raw {
	case "blob":
		return TypeBlob, nil
	case "tree":
		return TypeTree, nil
	case "commit":
		return TypeCommit, nil
	}
	return 0, fmt.Errorf("%w: unknown object type %q", ErrCorruptObject, raw)
}

const (
	// Tree mode constants matching Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
)

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode string // TreeModeDir, TreeModeFile, or TreeModeExecutable
	Name string
	Hash Hash
}

// IsDir reports whether the entry names a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == TreeModeDir
}

// CommitObj represents a commit pointing to a tree with metadata.
// Author and Committer hold the full identity line, e.g.
// "A U Thor <author@example.com> 1700000000 +0000".
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    string
	Committer string
	Message   string
}

var (
	// ErrNotFound reports a missing object or ref path.
	ErrNotFound = errors.New("object not found")
	// ErrCorruptObject reports a decompression failure or malformed envelope.
	ErrCorruptObject = errors.New("corrupt object")
	// ErrCorruptDelta reports a length mismatch or out-of-bounds copy during
	// delta reconstruction.
	ErrCorruptDelta = errors.New("corrupt delta")
	// ErrMalformedPack reports missing magic, a truncated entry, or a
	// checksum mismatch in a pack stream.
	ErrMalformedPack = errors.New("malformed pack")
	// ErrUnsupportedEntry reports a pack entry kind this client does not
	// decode (tag, offset-delta).
	ErrUnsupportedEntry = errors.New("unsupported pack entry")
)
