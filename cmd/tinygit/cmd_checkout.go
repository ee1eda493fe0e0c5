package main

import (
	"github.com/spf13/cobra"

	"github.com/tinygit/tinygit/pkg/object"
	"github.com/tinygit/tinygit/pkg/repo"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout [commit-hash]",
		Short: "Materialize a commit into the working directory (HEAD by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return r.CheckoutHead()
			}

			h := object.Hash(args[0])
			if err := h.Validate(); err != nil {
				// Not a raw hash, try it as a ref name.
				resolved, refErr := r.ResolveRef(args[0])
				if refErr != nil {
					return refErr
				}
				h = resolved
			}
			return r.CheckoutCommit(h)
		},
	}
}
