package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// DistributeCmd creates the distribute command
func DistributeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribute",
		Short: "Automatically assign unassigned instances in the distribution window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			atFlag, _ := cmd.Flags().GetString("at")

			now := time.Now().UTC()
			if atFlag != "" {
				parsed, err := parseTimeFlag(atFlag)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				now = parsed
			}

			app.Logger.Debug("distribute command",
				zap.Time("at", now),
				zap.Bool("dry_run", dryRun))

			result, err := services.DistributeUnassigned(app.Ctx, app.Database, app.Cfg, app.Logger, now, dryRun)
			if err != nil {
				return err
			}

			if result.DryRun {
				fmt.Printf("\n✓ Dry run for window %s to %s\n\n",
					result.WindowStart.Format("2006-01-02"), result.WindowEnd.Format("2006-01-02"))
			} else {
				fmt.Printf("\n✓ Distribution completed for window %s to %s\n\n",
					result.WindowStart.Format("2006-01-02"), result.WindowEnd.Format("2006-01-02"))
			}

			assigned := make([]string, 0, len(result.Assignments))
			for instanceID, memberID := range result.Assignments {
				if memberID != "" {
					assigned = append(assigned, fmt.Sprintf("  ✓ %s → %s", instanceID, memberID))
				}
			}
			sort.Strings(assigned)
			for _, line := range assigned {
				fmt.Println(line)
			}

			for _, instanceID := range result.Unassigned {
				fmt.Printf("  ⚠️  %s: no eligible member\n", instanceID)
			}
			for _, instanceID := range result.Conflicts {
				fmt.Printf("  ✗ %s: lost to a concurrent claim\n", instanceID)
			}

			if !result.DryRun {
				fmt.Printf("\nClaimed %d instances\n", result.ClaimedCount)
			}
			fmt.Printf("Fairness index: %s → %s\n\n",
				renderFairnessIndex(result.FairnessBefore),
				renderFairnessIndex(result.FairnessAfter))

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Compute assignments without saving")
	cmd.Flags().String("at", "", "Treat this moment as now (RFC 3339 or YYYY-MM-DD)")

	return cmd
}
