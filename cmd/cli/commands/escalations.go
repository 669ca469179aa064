package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// EscalationsCmd creates the escalations command
func EscalationsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "escalations",
		Short: "List work that needs operator attention",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("escalations command", zap.String("group_id", app.Cfg.GroupID))

			result, err := services.ListEscalations(app.Ctx, app.Database, app.Cfg, app.Logger, time.Now().UTC())
			if err != nil {
				return err
			}

			fmt.Printf("\nEscalations %s to %s\n\n",
				result.WindowStart.Format("2006-01-02"),
				result.WindowEnd.Format("2006-01-02"))

			if len(result.Escalations) == 0 {
				fmt.Printf("%s\n\n", color.New(color.FgHiGreen).Sprint("✓ Nothing needs attention"))
				return nil
			}

			for _, esc := range result.Escalations {
				fmt.Printf("  %s %s %s - %s\n",
					color.New(color.FgRed).Sprint("✗"),
					esc.Instance.ScheduledAt.Format("2006-01-02 15:04"),
					esc.Instance.Title,
					esc.Reason)
				if esc.OccasionID != "" {
					fmt.Printf("      occasion: %s\n", esc.OccasionID)
				}
			}
			fmt.Printf("\n%d instances need attention\n\n", len(result.Escalations))

			return nil
		},
	}
}
