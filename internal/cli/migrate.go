package cli

import (
	"github.com/spf13/cobra"

	"oxigo-server/internal/database"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(opts.Config)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			opts.Log.Info(cmd.Context(), "schema migrated", "driver", opts.Config.DBDriver)
			return nil
		},
	}
}
