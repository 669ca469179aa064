package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ListMembersCmd creates the listMembers command
func ListMembersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listMembers",
		Short: "List the group roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := app.Database.ListMembers(app.Ctx, app.Cfg.GroupID)
			if err != nil {
				return fmt.Errorf("failed to list members: %w", err)
			}

			fmt.Printf("\nFound %d members:\n\n", len(members))
			for _, m := range members {
				limitInfo := ""
				if m.Limits != nil {
					if m.Limits.MaxPerWeek != nil {
						limitInfo += fmt.Sprintf(" [max %d/week]", *m.Limits.MaxPerWeek)
					}
					if m.Limits.MaxPerMonth != nil {
						limitInfo += fmt.Sprintf(" [max %d/month]", *m.Limits.MaxPerMonth)
					}
				}
				blackoutInfo := ""
				if len(m.Availability) > 0 {
					blackoutInfo = fmt.Sprintf(" (%d blackout rules)", len(m.Availability))
				}
				fmt.Printf("- %s (%s) - %s%s%s\n", m.DisplayName, m.ID, m.Status, limitInfo, blackoutInfo)
			}
			fmt.Println()

			return nil
		},
	}
}
