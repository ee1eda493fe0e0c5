package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinygit/tinygit/pkg/object"
	"github.com/tinygit/tinygit/pkg/repo"
)

func newHashObjectCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "hash-object <file>",
		Short: "Compute the blob hash of a file, optionally storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			if write {
				r, err := repo.Open(".")
				if err != nil {
					return err
				}
				h, err := r.Store.Write(object.TypeBlob, data)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), h)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), object.HashObject(object.TypeBlob, data))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "store the blob in the object store")
	return cmd
}
