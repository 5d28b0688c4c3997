package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/mstgnz/placetopay/infra/config"
	"github.com/spf13/cobra"
)

var Version = "dev"

type rootOptions struct {
	configFile string
	envPrefix  string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "placetopay",
		Short:         "PlacetoPay relay service and tooling",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load env error: %w", err)
			}
			_ = config.App()
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "client settings file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&opts.envPrefix, "env-prefix", config.DefaultEnvPrefix, "prefix of the client environment variables")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before every command")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(billingCmd())
	rootCmd.AddCommand(collectionCmd())
	rootCmd.AddCommand(sessionCmd(opts))

	return rootCmd
}
