package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// ListInstancesCmd creates the listInstances command
func ListInstancesCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listInstances",
		Short: "List work instances inside a window (defaults to the distribution window)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromFlag, _ := cmd.Flags().GetString("from")
			toFlag, _ := cmd.Flags().GetString("to")

			from := time.Now().UTC()
			if fromFlag != "" {
				parsed, err := parseTimeFlag(fromFlag)
				if err != nil {
					return fmt.Errorf("invalid --from: %w", err)
				}
				from = parsed
			}
			to := from.AddDate(0, 0, app.Cfg.DistributionWindowDays)
			if toFlag != "" {
				parsed, err := parseTimeFlag(toFlag)
				if err != nil {
					return fmt.Errorf("invalid --to: %w", err)
				}
				to = parsed
			}

			instances, err := app.Database.ListInstancesBetween(app.Ctx, app.Cfg.GroupID, from, to)
			if err != nil {
				return fmt.Errorf("failed to list instances: %w", err)
			}

			fmt.Printf("\nFound %d instances between %s and %s:\n\n",
				len(instances), from.Format("2006-01-02"), to.Format("2006-01-02"))
			for _, inst := range instances {
				fmt.Printf("  %s  %s\n", inst.ID, instanceLine(inst))
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("from", "", "Window start (RFC 3339 or YYYY-MM-DD, default: now)")
	cmd.Flags().String("to", "", "Window end (default: from + distribution window)")

	return cmd
}
