package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tinygit/tinygit/pkg/object"
)

// CheckoutHead materializes the commit HEAD resolves to into the working
// directory.
func (r *Repo) CheckoutHead() error {
	h, err := r.ResolveRef("HEAD")
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return r.CheckoutCommit(h)
}

// treeTask pairs a tree hash with the directory it materializes into.
type treeTask struct {
	tree object.Hash
	dir  string
}

// CheckoutCommit writes the commit's full tree into the working directory.
// Trees are walked breadth-first with an explicit work queue. Directories
// materialize lazily when their first file is written, so a tree with no
// blobs anywhere beneath it yields no directory. Existing files at target
// paths are overwritten; files not named by the tree are left alone.
func (r *Repo) CheckoutCommit(h object.Hash) error {
	t, data, err := r.Store.Read(h)
	if err != nil {
		return fmt.Errorf("checkout: read commit %s: %w", h, err)
	}
	if t != object.TypeCommit {
		return fmt.Errorf("checkout: object %s is a %s, not a commit", h, t)
	}
	commit, err := object.UnmarshalCommit(data)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	queue := []treeTask{{tree: commit.TreeHash, dir: r.RootDir}}
	for len(queue) > 0 {
		task := queue[0]
		queue = queue[1:]

		t, data, err := r.Store.Read(task.tree)
		if err != nil {
			return fmt.Errorf("checkout: read tree %s: %w", task.tree, err)
		}
		if t != object.TypeTree {
			return fmt.Errorf("checkout: object %s is a %s, not a tree", task.tree, t)
		}
		entries, err := object.UnmarshalTree(data)
		if err != nil {
			return fmt.Errorf("checkout: tree %s: %w", task.tree, err)
		}

		dirReady := false
		for _, e := range entries {
			target := filepath.Join(task.dir, e.Name)
			if e.IsDir() {
				queue = append(queue, treeTask{tree: e.Hash, dir: target})
				continue
			}

			bt, blob, err := r.Store.Read(e.Hash)
			if err != nil {
				return fmt.Errorf("checkout: read blob for %q: %w", e.Name, err)
			}
			if bt != object.TypeBlob {
				return fmt.Errorf("checkout: entry %q points at a %s, not a blob", e.Name, bt)
			}
			if !dirReady {
				if err := os.MkdirAll(task.dir, 0o755); err != nil {
					return fmt.Errorf("checkout: mkdir %q: %w", task.dir, err)
				}
				dirReady = true
			}
			if err := os.WriteFile(target, blob, filePermFromMode(e.Mode)); err != nil {
				return fmt.Errorf("checkout: write %q: %w", target, err)
			}
		}
	}
	return nil
}
