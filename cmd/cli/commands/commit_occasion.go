package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// CommitOccasionCmd creates the commitOccasion command
func CommitOccasionCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commitOccasion <instance_id>...",
		Short: "Create a selection occasion with a computed turn order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			algorithm, _ := cmd.Flags().GetString("algorithm")
			closesFlag, _ := cmd.Flags().GetString("closes")

			now := time.Now().UTC()
			closesAt := now.AddDate(0, 0, app.Cfg.DistributionWindowDays)
			if closesFlag != "" {
				parsed, err := parseTimeFlag(closesFlag)
				if err != nil {
					return fmt.Errorf("invalid --closes: %w", err)
				}
				closesAt = parsed
			}

			app.Logger.Debug("commitOccasion command",
				zap.String("algorithm", algorithm),
				zap.Int("pool_size", len(args)),
				zap.Time("closes_at", closesAt))

			result, err := services.CommitOccasion(app.Ctx, app.Database, app.Cfg, app.Logger, algorithm, args, closesAt, now)
			if err != nil {
				return err
			}

			occasion := result.Occasion
			fmt.Printf("\n✓ Occasion created!\n\n")
			fmt.Printf("Occasion ID: %s\n", occasion.ID)
			fmt.Printf("Algorithm:   %s\n", occasion.Algorithm)
			fmt.Printf("State:       %s\n", renderOccasionState(occasion.State))
			fmt.Printf("Closes:      %s\n\n", occasion.ClosesAt.Format("2006-01-02 15:04"))

			fmt.Printf("Turn order:\n")
			printTurnOrder(occasion.Order, occasion.Quotas)
			printWarnings(result.Warnings)
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("algorithm", "", "Turn order algorithm (default: the configured one)")
	cmd.Flags().String("closes", "", "When the occasion closes (default: end of the distribution window)")

	return cmd
}
