package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinygit/tinygit/pkg/object"
	"github.com/tinygit/tinygit/pkg/repo"
)

func newCatFileCmd() *cobra.Command {
	var showType bool

	cmd := &cobra.Command{
		Use:   "cat-file <hash>",
		Short: "Print the content or type of a stored object",
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

			if showType {
				fmt.Fprintln(cmd.OutOrStdout(), t)
				return nil
			}
			cmd.OutOrStdout().Write(data)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type instead of its content")
	return cmd
}
