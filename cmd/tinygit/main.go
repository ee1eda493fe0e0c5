package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

type settings struct {
	HTTPTimeout  time.Duration `env:"TINYGIT_HTTP_TIMEOUT,default=60s"`
	HTTPAttempts int           `env:"TINYGIT_HTTP_ATTEMPTS,default=3"`
}

var env settings

func loadEnv(ctx context.Context) error {
	return envconfig.Process(ctx, &env)
}

func main() {
	if err := loadEnv(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:   "tinygit",
		Short: "Minimal client for content-addressed repositories over smart HTTP",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newCloneCmd())
	root.AddCommand(newHashObjectCmd())
	root.AddCommand(newCatFileCmd())
	root.AddCommand(newLsTreeCmd())
	root.AddCommand(newCheckoutCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "tinygit 0.1.0-dev")
		},
	}
}
