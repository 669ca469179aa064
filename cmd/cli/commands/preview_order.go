package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// PreviewOrderCmd creates the previewOrder command
func PreviewOrderCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "previewOrder <instance_id>...",
		Short: "Preview the turn order for a pool without creating an occasion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			algorithm, _ := cmd.Flags().GetString("algorithm")

			app.Logger.Debug("previewOrder command",
				zap.String("algorithm", algorithm),
				zap.Int("pool_size", len(args)))

			result, err := services.PreviewTurnOrder(app.Ctx, app.Database, app.Cfg, app.Logger, algorithm, args, time.Now().UTC())
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Turn order preview (%s)\n\n", result.Algorithm)
			printTurnOrder(result.Order, result.Quotas)
			printWarnings(result.Warnings)
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("algorithm", "", "Turn order algorithm (default: the configured one)")

	return cmd
}

// printTurnOrder lists the order one member per line, with quotas when the
// algorithm assigns them
func printTurnOrder(order []string, quotas map[string]float64) {
	for i, memberID := range order {
		if quotas != nil {
			fmt.Printf("  %2d. %s (quota %.1f pts)\n", i+1, memberID, quotas[memberID])
		} else {
			fmt.Printf("  %2d. %s\n", i+1, memberID)
		}
	}
}
