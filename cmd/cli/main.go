package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/cmd/cli/commands"
	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/backend"
	"github.com/tackroom/fairshare/pkg/utils/logging"
)

var (
	configPath string
	verbose    bool
	app        *commands.AppContext
	closeDB    func()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fairshare",
		Short: "Fairshare CLI - Distribute group duties fairly",
		Long:  `A CLI tool for distributing recurring duties across a group: generating work instances, running the automatic distributor, and driving member selection occasions.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeDB != nil {
				closeDB()
			}
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: fairshare_config.yaml in cwd or home)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug output on the console")

	// Commands share one AppContext; initApp fills it in before any RunE fires
	app = &commands.AppContext{}

	rootCmd.AddCommand(commands.ListMembersCmd(app))
	rootCmd.AddCommand(commands.AddMemberCmd(app))
	rootCmd.AddCommand(commands.ListInstancesCmd(app))
	rootCmd.AddCommand(commands.GenerateInstancesCmd(app))
	rootCmd.AddCommand(commands.DistributeCmd(app))
	rootCmd.AddCommand(commands.ClaimCmd(app))
	rootCmd.AddCommand(commands.ReleaseCmd(app))
	rootCmd.AddCommand(commands.PreviewOrderCmd(app))
	rootCmd.AddCommand(commands.CommitOccasionCmd(app))
	rootCmd.AddCommand(commands.ActivateOccasionCmd(app))
	rootCmd.AddCommand(commands.PickCmd(app))
	rootCmd.AddCommand(commands.CompleteOccasionCmd(app))
	rootCmd.AddCommand(commands.CancelOccasionCmd(app))
	rootCmd.AddCommand(commands.ListOccasionsCmd(app))
	rootCmd.AddCommand(commands.EscalationsCmd(app))
	rootCmd.AddCommand(commands.FairnessCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and database
func initApp() error {
	app.Ctx = context.Background()

	// Load .env if it exists
	envPaths := []string{".env", "../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	var err error
	app.Logger, err = logging.NewLogger("cli", verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if configPath != "" {
		app.Cfg, err = config.LoadFromPath(configPath)
	} else {
		app.Cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded",
		zap.String("group_id", app.Cfg.GroupID),
		zap.String("backend", app.Cfg.Database.Backend))

	app.Database, closeDB, err = backend.Open(app.Ctx, app.Cfg, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	return nil
}
