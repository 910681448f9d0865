package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/bootstrap"
	"viralacademy.com/academy/internal/config"
	"viralacademy.com/academy/internal/server"
	"viralacademy.com/academy/pkg/cache"
	"viralacademy.com/academy/pkg/database"
	"viralacademy.com/academy/pkg/logger"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "academy",
		Short:        "Viral Academy API server",
		SilenceUsage: true,
		RunE:         serve,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (env CONFIG_PATH)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate the database and start the HTTP server",
			RunE:  serve,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, db, err := setup()
				if err != nil {
					return err
				}
				return bootstrap.Migrate(db)
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Create the admin account and default categories",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, db, err := setup()
				if err != nil {
					return err
				}
				return bootstrap.Seed(db, bootstrap.SeedConfig{
					AdminEmail:    cfg.AdminEmail,
					AdminPassword: cfg.AdminPassword,
				})
			},
		},
		&cobra.Command{
			Use:   "run-job <name>",
			Short: "Run a scheduled job once and exit",
			Args:  cobra.ExactArgs(1),
			RunE:  runJob,
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger.Configure(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})

	db, err := database.Connect(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, db, nil
}

func build(ctx context.Context) (*server.Server, error) {
	cfg, db, err := setup()
	if err != nil {
		return nil, err
	}

	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		// Redis only backs rate limits and realtime delivery.
		log.Warn().Err(err).Msg("redis unavailable, continuing without it")
	}

	if err := bootstrap.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if cfg.IsDevelopment() {
		if err := bootstrap.Seed(db, bootstrap.SeedConfig{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		}); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	return server.NewServer(cfg, db, redisClient)
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := build(ctx)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func runJob(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	srv, err := build(ctx)
	if err != nil {
		return err
	}
	defer srv.Close()

	found, err := srv.Scheduler().RunByName(ctx, args[0])
	if !found {
		return fmt.Errorf("unknown job %q (known: %v)", args[0], srv.Scheduler().Jobs())
	}
	return err
}
