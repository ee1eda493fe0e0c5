package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tinygit/tinygit/pkg/object"
)

// Head reads .git/HEAD. If the content starts with "ref: ", it returns the
// ref path (e.g., "refs/heads/main"). Otherwise it returns the raw content
// as a detached hash string.
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.GitDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")

	if strings.HasPrefix(content, "ref: ") {
		return strings.TrimPrefix(content, "ref: "), nil
	}
	return content, nil
}

// ResolveRef resolves a ref name to an object hash.
//
// Resolution order:
//  1. If name is "HEAD", read HEAD. If HEAD is symbolic, resolve the target ref.
//  2. If name starts with "refs/", read .git/<name>.
//  3. Otherwise, try "refs/heads/<name>".
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	if name == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(head, "refs/") {
			return r.ResolveRef(head)
		}
		// Detached HEAD: the value is a hash.
		h := object.Hash(head)
		if err := h.Validate(); err != nil {
			return "", fmt.Errorf("resolve HEAD: %w", err)
		}
		return h, nil
	}

	var refPath string
	if strings.HasPrefix(name, "refs/") {
		refPath = filepath.Join(r.GitDir, filepath.FromSlash(name))
	} else {
		refPath = filepath.Join(r.GitDir, "refs", "heads", name)
	}

	data, err := os.ReadFile(refPath)
	if err != nil {
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	h := object.Hash(strings.TrimSpace(string(data)))
	if err := h.Validate(); err != nil {
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	return h, nil
}

// UpdateRef writes a hash to the named ref file under .git/. The write is
// atomic: a temp file in the ref's directory is renamed into place. Parent
// directories are created as needed.
func (r *Repo) UpdateRef(name string, h object.Hash) error {
	if err := h.Validate(); err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	if !validRefName(name) {
		return fmt.Errorf("update ref %q: invalid ref name", name)
	}
	refPath := filepath.Join(r.GitDir, filepath.FromSlash(name))

	dir := filepath.Dir(refPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	tmp, err := os.CreateTemp(dir, ".ref-tmp-*")
	if err != nil {
		return fmt.Errorf("update ref %q: tmpfile: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(string(h) + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	if err := os.Rename(tmpName, refPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	return nil
}

// validRefName rejects ref names that would resolve to a path outside
// .git/. Ref names arrive from untrusted remote advertisements, so every
// slash-separated element must be a plain component.
func validRefName(name string) bool {
	if name == "" || strings.ContainsRune(name, '\\') {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}

// SetHead points HEAD at a branch ref ("refs/..." prefix, written as a
// symbolic ref) or at a raw commit hash (detached).
func (r *Repo) SetHead(target string) error {
	var content string
	if strings.HasPrefix(target, "refs/") {
		content = "ref: " + target + "\n"
	} else {
		if err := object.Hash(target).Validate(); err != nil {
			return fmt.Errorf("set HEAD: %w", err)
		}
		content = target + "\n"
	}
	if err := os.WriteFile(filepath.Join(r.GitDir, "HEAD"), []byte(content), 0o644); err != nil {
		return fmt.Errorf("set HEAD: %w", err)
	}
	return nil
}

// ListRefs lists references under .git/refs. Names are returned relative to
// the refs root, e.g. "heads/main".
func (r *Repo) ListRefs() (map[string]object.Hash, error) {
	root := filepath.Join(r.GitDir, "refs")

	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		refs[filepath.ToSlash(rel)] = object.Hash(strings.TrimSpace(string(data)))
		return nil
	})
	if os.IsNotExist(err) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}
