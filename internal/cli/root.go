// Package cli wires configuration, storage and services behind the oxigo
// command line.
package cli

import (
	"github.com/spf13/cobra"

	"oxigo-server/internal/config"
	"oxigo-server/internal/logging"
)

// RootOptions is shared by every subcommand. It is filled in before any
// subcommand runs.
type RootOptions struct {
	Config *config.Config
	Log    logging.Logger

	// EnvFile is loaded before reading the environment.
	EnvFile string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "oxigo",
		Short: "OxiGo environmental monitoring backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Config = config.Load(opts.EnvFile)
			opts.Log = logging.Stdout(opts.Config.LogFormat, opts.Config.LogLevel)
			return nil
		},
		SilenceUsage: true,
		// bare `oxigo` serves
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file to load (missing file is ignored)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewRewardsCommand(opts))
	return cmd
}
