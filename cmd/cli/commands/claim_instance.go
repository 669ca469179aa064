package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// ClaimCmd creates the claim command
func ClaimCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <instance_id> <member_id>",
		Short: "Claim an open instance for a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			instanceID := args[0]
			memberID := args[1]

			app.Logger.Debug("claim command",
				zap.String("instance_id", instanceID),
				zap.String("member_id", memberID))

			result, err := services.ClaimInstance(app.Ctx, app.Database, app.Cfg, app.Logger, instanceID, memberID)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Instance claimed!\n\n")
			fmt.Printf("  %s\n", instanceLine(*result.Instance))
			fmt.Printf("  Holder: %s (%s)\n\n", result.Member.DisplayName, result.Member.ID)

			return nil
		},
	}
}
