// Command incident-log-seed replaces all stored incidents with sample data.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/bissquit/incident-log/internal/app"
	"github.com/bissquit/incident-log/internal/config"
	"github.com/bissquit/incident-log/internal/incidents"
)

func main() {
	configPath := flag.String("config", config.PathFromEnv(), "path to YAML config file")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline for seeding")
	flag.Parse()

	if err := run(*configPath, *timeout); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, timeout time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	slog.SetDefault(app.NewLogger(cfg.Log))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	service := incidents.NewService(store.Repository)
	seeded, err := service.Seed(ctx, incidents.SampleIncidents())
	if err != nil {
		return err
	}

	slog.Info("database seeded", "incidents", len(seeded), "driver", cfg.Storage.Driver)
	return nil
}
