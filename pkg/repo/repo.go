package repo

import (
	"github.com/tinygit/tinygit/pkg/object"
)

// Repo represents an opened repository: a working directory with a .git/
// metadata directory holding the object store, refs, and config.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // .git/ directory
	Store   *object.Store // content-addressed object store
}

func newRepo(rootDir, gitDir string) *Repo {
	return &Repo{
		RootDir: rootDir,
		GitDir:  gitDir,
		Store:   object.NewStore(gitDir),
	}
}
