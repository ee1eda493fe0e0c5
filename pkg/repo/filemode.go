package repo

import (
	"os"

	"github.com/tinygit/tinygit/pkg/object"
)

func filePermFromMode(mode string) os.FileMode {
	if mode == object.TreeModeExecutable {
		return 0o755
	}
	return 0o644
}
