package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/backend"
	"github.com/tackroom/fairshare/pkg/handlers"
	"github.com/tackroom/fairshare/pkg/utils/logging"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	logger, err := logging.NewLogger("server", os.Getenv("FAIRSHARE_VERBOSE") != "")
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	logger.Info("Configuration loaded",
		zap.String("group_id", cfg.GroupID),
		zap.String("backend", cfg.Database.Backend))

	ctx := context.Background()
	database, closeDB, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer closeDB()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	h := handlers.New(database, cfg, logger)

	r := gin.Default()
	r.GET("/health", h.Health())

	api := r.Group("/api/v1")
	handlers.RegisterRoutes(api, h)

	logger.Info("Server starting", zap.String("addr", cfg.Server.Addr))
	if err := r.Run(cfg.Server.Addr); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
