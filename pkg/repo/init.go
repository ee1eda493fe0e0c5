package repo

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultBranchRef is the symbolic HEAD target written by Init.
const DefaultBranchRef = "refs/heads/main"

// Init creates a new repository at path. It creates the .git/ directory
// structure: HEAD, objects/, and refs/heads/. Returns an error if a .git/
// directory already exists.
func Init(path string) (*Repo, error) {
	gitDir := filepath.Join(path, ".git")

	if _, err := os.Stat(gitDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", gitDir)
	}

	dirs := []string{
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	headPath := filepath.Join(gitDir, "HEAD")
	if err := os.WriteFile(headPath, []byte("ref: "+DefaultBranchRef+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	return newRepo(path, gitDir), nil
}

// Open searches upward from path for a .git/ directory and opens the
// repository. Returns an error if no .git/ directory is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitDir := filepath.Join(cur, ".git")
		info, err := os.Stat(gitDir)
		if err == nil && info.IsDir() {
			return newRepo(cur, gitDir), nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: not a repository (or any parent up to /)")
		}
		cur = parent
	}
}
