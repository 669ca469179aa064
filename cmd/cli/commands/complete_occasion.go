package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// CompleteOccasionCmd creates the completeOccasion command
func CompleteOccasionCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "completeOccasion <occasion_id>",
		Short: "Close an active occasion and record its turn order history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			occasionID := args[0]

			app.Logger.Debug("completeOccasion command", zap.String("occasion_id", occasionID))

			result, err := services.CompleteOccasion(app.Ctx, app.Database, app.Logger, occasionID, time.Now().UTC())
			if err != nil {
				return err
			}

			if result.AlreadyCompleted {
				fmt.Printf("\n✓ Occasion was already completed\n\n")
			} else {
				fmt.Printf("\n✓ Occasion completed!\n\n")
			}

			history := result.History
			fmt.Printf("History ID:  %s\n", history.ID)
			fmt.Printf("Algorithm:   %s\n", history.Algorithm)
			fmt.Printf("Completed:   %s\n\n", history.CompletedAt.Format("2006-01-02 15:04"))

			fmt.Printf("Final order and picks:\n")
			for _, memberID := range history.FinalOrder {
				fmt.Printf("  %s: %d picks, %.1f pts\n",
					memberID,
					history.SelectionsPerMember[memberID],
					history.PointsPickedPerMember[memberID])
			}

			if len(result.Unpicked) > 0 {
				fmt.Printf("\n⚠️  %d pool instances were never picked:\n", len(result.Unpicked))
				for _, instanceID := range result.Unpicked {
					fmt.Printf("  ✗ %s\n", instanceID)
				}
			}
			fmt.Println()

			return nil
		},
	}
}
