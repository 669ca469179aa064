package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/model"
)

// AddMemberCmd creates the addMember command
func AddMemberCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addMember <member_id> <display_name>",
		Short: "Add a member to the roster or update an existing one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID := args[0]
			displayName := args[1]
			statusFlag, _ := cmd.Flags().GetString("status")
			maxPerWeek, _ := cmd.Flags().GetInt("max-per-week")
			maxPerMonth, _ := cmd.Flags().GetInt("max-per-month")

			app.Logger.Debug("addMember command",
				zap.String("member_id", memberID),
				zap.String("status", statusFlag))

			status := model.MemberStatus(statusFlag)
			if !status.IsValid() {
				return fmt.Errorf("status must be active or inactive, got %q", statusFlag)
			}

			var limits *model.Limits
			if maxPerWeek > 0 || maxPerMonth > 0 {
				limits = &model.Limits{}
				if maxPerWeek > 0 {
					limits.MaxPerWeek = &maxPerWeek
				}
				if maxPerMonth > 0 {
					limits.MaxPerMonth = &maxPerMonth
				}
			}

			member := &model.Member{
				ID:          memberID,
				GroupID:     app.Cfg.GroupID,
				DisplayName: displayName,
				Status:      status,
				Limits:      limits,
			}
			if err := app.Database.UpsertMember(app.Ctx, member); err != nil {
				return fmt.Errorf("failed to save member: %w", err)
			}

			fmt.Printf("\n✓ Member saved!\n\n")
			fmt.Printf("ID:           %s\n", member.ID)
			fmt.Printf("Display Name: %s\n", member.DisplayName)
			fmt.Printf("Status:       %s\n\n", member.Status)

			return nil
		},
	}

	cmd.Flags().String("status", "active", "Member status (active or inactive)")
	cmd.Flags().Int("max-per-week", 0, "Cap on instances per calendar week (0 = no cap)")
	cmd.Flags().Int("max-per-month", 0, "Cap on instances per calendar month (0 = no cap)")

	return cmd
}
