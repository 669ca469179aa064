package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// PickCmd creates the pick command
func PickCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pick <occasion_id> <member_id> <instance_id>",
		Short: "Record the current turn member's pick in an active occasion",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			occasionID := args[0]
			memberID := args[1]
			instanceID := args[2]

			app.Logger.Debug("pick command",
				zap.String("occasion_id", occasionID),
				zap.String("member_id", memberID),
				zap.String("instance_id", instanceID))

			result, err := services.PickInstance(app.Ctx, app.Database, app.Logger, occasionID, memberID, instanceID, time.Now().UTC())
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Pick recorded!\n\n")
			fmt.Printf("  %s\n\n", instanceLine(*result.Instance))

			if result.PoolExhausted {
				fmt.Printf("Pool exhausted - complete the occasion with: fairshare completeOccasion %s\n\n", occasionID)
				return nil
			}

			fmt.Printf("Next turn: %s\n", result.NextTurn)
			if result.Suggested != nil {
				fmt.Printf("Suggested pick: %s  %s\n", result.Suggested.ID, instanceLine(*result.Suggested))
			}
			fmt.Println()

			return nil
		},
	}
}
