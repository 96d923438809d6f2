package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/lorehaven/loregraph/internal/config"
	"github.com/lorehaven/loregraph/internal/oracle"
	"github.com/lorehaven/loregraph/internal/pipeline"
	"github.com/lorehaven/loregraph/internal/server"
	"github.com/lorehaven/loregraph/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment as-is")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("could not load config file, falling back to env-only config", "path", cfgPath, "error", err)
		cfg = config.FromEnv()
	}

	ctx := context.Background()

	driver, err := store.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
	if err != nil {
		logger.Error("failed to connect to Memgraph", "uri", cfg.Memgraph.URI, "error", err)
		os.Exit(1)
	}
	defer driver.Close(ctx)

	if err := driver.BuildIndices(ctx); err != nil {
		logger.Warn("failed to build indices", "error", err)
	}

	client, err := oracle.NewClient(ctx, cfg.Oracle)
	if err != nil {
		logger.Error("failed to initialize oracle client", "provider", cfg.Oracle.Provider, "error", err)
		os.Exit(1)
	}

	st := store.New(driver)
	p := pipeline.New(client, st, st, cfg, logger.Handler())
	srv := server.New(p, st, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("starting server", "port", port, "oracle_provider", cfg.Oracle.Provider)
	if err := srv.SetupRouter().Run(":" + port); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
