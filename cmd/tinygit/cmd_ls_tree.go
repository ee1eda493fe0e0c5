package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinygit/tinygit/pkg/object"
	"github.com/tinygit/tinygit/pkg/repo"
)

func newLsTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls-tree <tree-hash>",
		Short: "List the entries of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			h := object.Hash(args[0])
			if err := h.Validate(); err != nil {
				return err
			}

			t, data, err := r.Store.Read(h)
			if err != nil {
				return err
			}
			if t != object.TypeTree {
				return fmt.Errorf("object %s is a %s, not a tree", h, t)
			}

			entries, err := object.UnmarshalTree(data)
			if err != nil {
				return err
			}
			for _, e := range entries {
				kind := object.TypeBlob
				if e.IsDir() {
					kind = object.TypeTree
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\t%s\n", e.Mode, kind, e.Hash, e.Name)
			}
			return nil
		},
	}
}
