package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/SAP-F-2025/backoffice-service/internal/config"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/backoffice-service/internal/seed"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
	"github.com/SAP-F-2025/backoffice-service/pkg"
)

func main() {
	path := flag.String("file", "seeds/catalog.yaml", "seed catalog to apply")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := utils.New(cfg.Environment)
	slogger := logger.Slog()

	f, err := os.Open(*path)
	if err != nil {
		logger.Error("Failed to open seed file", "path", *path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	catalog, err := seed.Load(f)
	if err != nil {
		logger.Error("Invalid seed file", "path", *path, "error", err)
		os.Exit(1)
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := postgres.Migrate(db); err != nil {
		logger.Error("Migration failed", "error", err)
		os.Exit(1)
	}

	sm := services.NewServiceManager(services.Dependencies{
		Repo:   postgres.NewRepository(db),
		Config: cfg,
		Logger: slogger,
	})
	seeder := seed.NewSeeder(sm, services.Actor{Role: models.RoleOwner}, slogger)

	if _, err := seeder.Apply(context.Background(), catalog); err != nil {
		logger.Error("Seed failed", "error", err)
		os.Exit(1)
	}
}
