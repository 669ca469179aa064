package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// ReleaseCmd creates the release command
func ReleaseCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "release <instance_id> [member_id]",
		Short: "Return an assigned instance to the pool (omit member_id for an operator override)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			instanceID := args[0]
			var memberID string
			if len(args) > 1 {
				memberID = args[1]
			}

			app.Logger.Debug("release command",
				zap.String("instance_id", instanceID),
				zap.String("member_id", memberID))

			result, err := services.ReleaseInstance(app.Ctx, app.Database, app.Logger, instanceID, memberID)
			if err != nil {
				return err
			}

			if result.ReleasedMember == "" {
				fmt.Printf("\n✓ Instance was already unassigned\n\n")
			} else {
				fmt.Printf("\n✓ Instance released from %s\n\n", result.ReleasedMember)
			}
			fmt.Printf("  %s\n\n", instanceLine(*result.Instance))

			return nil
		},
	}
}
