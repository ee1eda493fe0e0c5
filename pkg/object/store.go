package object

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Each file is a zlib-compressed
// "type len\0content" envelope.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash. Writing a hash that
// already exists is a no-op: content addressing guarantees the bytes are
// identical. Writes are atomic: data goes to a temp file in the shard
// directory and is then renamed into place, so a crash mid-write never
// leaves a partial file observable under a valid hash.
func (s *Store) Write(t Type, data []byte) (Hash, error) {
	h := HashObject(t, data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	zw := zlib.NewWriter(tmp)
	if _, err := fmt.Fprintf(zw, "%s %d\x00", t, len(data)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write %s: %w", h, err)
	}
	if _, err := zw.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write %s: %w", h, err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write %s: flush: %w", h, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write %s: close: %w", h, err)
	}

	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write %s: rename: %w", h, err)
	}

	return h, nil
}

// Read retrieves an object by hash, returning its type and raw content.
// A missing path is ErrNotFound; a bad zlib stream or malformed envelope is
// ErrCorruptObject.
func (s *Store) Read(h Hash) (Type, []byte, error) {
	f, err := os.Open(s.objectPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil, fmt.Errorf("object %s: %w", h, ErrNotFound)
		}
		return 0, nil, fmt.Errorf("object read %s: %w", h, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return 0, nil, fmt.Errorf("object %s: %w: %v", h, ErrCorruptObject, err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		zr.Close()
		return 0, nil, fmt.Errorf("object %s: %w: %v", h, ErrCorruptObject, err)
	}
	if err := zr.Close(); err != nil {
		return 0, nil, fmt.Errorf("object %s: %w: %v", h, ErrCorruptObject, err)
	}

	// Parse envelope: "type len\0content"
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return 0, nil, fmt.Errorf("object %s: %w: no NUL in envelope", h, ErrCorruptObject)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	typeTok, lenTok, ok := strings.Cut(header, " ")
	if !ok {
		return 0, nil, fmt.Errorf("object %s: %w: invalid envelope %q", h, ErrCorruptObject, header)
	}
	t, err := ParseType(typeTok)
	if err != nil {
		return 0, nil, fmt.Errorf("object %s: %w", h, err)
	}
	length, err := strconv.Atoi(lenTok)
	if err != nil {
		return 0, nil, fmt.Errorf("object %s: %w: invalid length %q", h, ErrCorruptObject, lenTok)
	}
	if len(content) != length {
		return 0, nil, fmt.Errorf("object %s: %w: length mismatch (envelope=%d, actual=%d)", h, ErrCorruptObject, length, len(content))
	}

	return t, content, nil
}
