package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// FairnessCmd creates the fairness command
func FairnessCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fairness",
		Short: "Show how evenly completed work is spread across the group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("fairness command", zap.String("group_id", app.Cfg.GroupID))

			result, err := services.FairnessReport(app.Ctx, app.Database, app.Cfg, app.Logger, time.Now().UTC())
			if err != nil {
				return err
			}

			if result.HorizonStart.IsZero() {
				fmt.Printf("\nFairness report (all time):\n\n")
			} else {
				fmt.Printf("\nFairness report since %s:\n\n", result.HorizonStart.Format("2006-01-02"))
			}

			for _, standing := range result.Standings {
				note := ""
				if !standing.HasHistory {
					note = "  (no completed work yet)"
				}
				fmt.Printf("  %-20s %6.1f pts%s\n", standing.Member.DisplayName, standing.Points, note)
			}

			fmt.Printf("\nFairness index: %s\n\n", renderFairnessIndex(result.FairnessIndex))

			return nil
		},
	}
}
