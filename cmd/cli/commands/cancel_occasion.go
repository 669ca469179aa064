package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// CancelOccasionCmd creates the cancelOccasion command
func CancelOccasionCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancelOccasion <occasion_id>",
		Short: "Discard an occasion that has not completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			occasionID := args[0]

			app.Logger.Debug("cancelOccasion command", zap.String("occasion_id", occasionID))

			if err := services.CancelOccasion(app.Ctx, app.Database, app.Logger, occasionID); err != nil {
				return err
			}

			fmt.Printf("\n✓ Occasion %s cancelled\n\n", occasionID)

			return nil
		},
	}
}
