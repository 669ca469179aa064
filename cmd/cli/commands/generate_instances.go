package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// GenerateInstancesCmd creates the generateInstances command
func GenerateInstancesCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generateInstances <from> <to>",
		Short: "Expand the configured routines into work instances for a date range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			from, err := parseTimeFlag(args[0])
			if err != nil {
				return fmt.Errorf("invalid from: %w", err)
			}
			to, err := parseTimeFlag(args[1])
			if err != nil {
				return fmt.Errorf("invalid to: %w", err)
			}

			app.Logger.Debug("generateInstances command",
				zap.Time("from", from),
				zap.Time("to", to),
				zap.Bool("dry_run", dryRun))

			result, err := services.GenerateInstances(app.Ctx, app.Database, app.Cfg, app.Logger, from, to, dryRun)
			if err != nil {
				return err
			}

			if result.DryRun {
				fmt.Printf("\n✓ Dry run: %d instances would be generated (%d already exist)\n\n", len(result.Generated), result.Skipped)
			} else {
				fmt.Printf("\n✓ Generated %d instances (%d already existed)\n\n", len(result.Generated), result.Skipped)
			}

			for _, inst := range result.Generated {
				fmt.Printf("  %s\n", instanceLine(inst))
			}
			if len(result.Generated) > 0 {
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Show what would be generated without saving")

	return cmd
}
