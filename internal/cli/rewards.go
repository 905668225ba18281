package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"oxigo-server/internal/database"
	"oxigo-server/internal/rewards"
)

// NewRewardsCommand groups operator tasks on rewards. Rewards are only
// granted from here; the API can list and claim them.
func NewRewardsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "Manage user rewards",
	}
	cmd.AddCommand(newGrantCommand(opts))
	return cmd
}

func newGrantCommand(opts *RootOptions) *cobra.Command {
	var (
		userID      uint
		description string
	)
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant an unclaimed reward to a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(opts.Config)
			if err != nil {
				return err
			}
			r, err := rewards.NewService(db, opts.Log).Grant(cmd.Context(), userID, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reward %d granted to user %d\n", r.ID, r.UserID)
			return nil
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "user id")
	cmd.Flags().StringVar(&description, "description", "", "reward description")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}
