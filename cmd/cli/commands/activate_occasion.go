package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// ActivateOccasionCmd creates the activateOccasion command
func ActivateOccasionCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "activateOccasion <occasion_id>",
		Short: "Recompute the turn order against the current roster and open the occasion for picking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			occasionID := args[0]

			app.Logger.Debug("activateOccasion command", zap.String("occasion_id", occasionID))

			result, err := services.ActivateOccasion(app.Ctx, app.Database, app.Cfg, app.Logger, occasionID, time.Now().UTC())
			if err != nil {
				return err
			}

			occasion := result.Occasion
			fmt.Printf("\n✓ Occasion activated!\n\n")
			fmt.Printf("State: %s\n\n", renderOccasionState(occasion.State))
			fmt.Printf("Turn order:\n")
			printTurnOrder(occasion.Order, occasion.Quotas)
			fmt.Printf("\nFirst turn: %s\n", occasion.TurnMember())
			printWarnings(result.Warnings)
			fmt.Println()

			return nil
		},
	}
}
