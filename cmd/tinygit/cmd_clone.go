package main

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tinygit/tinygit/pkg/repo"
)

func newCloneCmd() *cobra.Command {
	var remoteName string

	cmd := &cobra.Command{
		Use:   "clone <remote-url> [directory]",
		Short: "Clone a repository over smart HTTP",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]

			dest := ""
			if len(args) == 2 {
				dest = args[1]
			} else {
				dest = deriveCloneDir(source)
			}
			if strings.TrimSpace(dest) == "" {
				return fmt.Errorf("destination directory is required")
			}

			r, err := repo.Clone(cmd.Context(), source, dest, repo.CloneOptions{
				RemoteName:  remoteName,
				Timeout:     env.HTTPTimeout,
				MaxAttempts: env.HTTPAttempts,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cloned %s into %s\n", source, r.RootDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&remoteName, "remote-name", "origin", "name to assign to the cloned remote")
	return cmd
}

// deriveCloneDir picks a local directory name from the last URL path
// segment, dropping a ".git" suffix.
func deriveCloneDir(source string) string {
	u, err := url.Parse(source)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	base = strings.TrimSuffix(base, ".git")
	if base == "." || base == "/" {
		return ""
	}
	return base
}
