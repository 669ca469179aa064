package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ListOccasionsCmd creates the listOccasions command
func ListOccasionsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listOccasions",
		Short: "List the group's selection occasions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("listOccasions command", zap.String("group_id", app.Cfg.GroupID))

			occasions, err := app.Database.ListOccasions(app.Ctx, app.Cfg.GroupID)
			if err != nil {
				return fmt.Errorf("failed to list occasions: %w", err)
			}

			if len(occasions) == 0 {
				fmt.Printf("\nNo occasions found\n\n")
				return nil
			}

			fmt.Printf("\nOccasions (%d):\n\n", len(occasions))
			for i := range occasions {
				occ := &occasions[i]
				fmt.Printf("  %s  %s  %-14s %d/%d picked, closes %s\n",
					occ.ID,
					renderOccasionState(occ.State),
					occ.Algorithm,
					len(occ.Picks),
					len(occ.InstancePool),
					occ.ClosesAt.Format("2006-01-02 15:04"))
			}
			fmt.Println()

			return nil
		},
	}
}
