package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/civicledger/disclosure-engine/pkg/config"
	"github.com/civicledger/disclosure-engine/pkg/database"
	"github.com/civicledger/disclosure-engine/pkg/handlers"
	"github.com/civicledger/disclosure-engine/pkg/logging"
	"github.com/civicledger/disclosure-engine/pkg/normalize"
	"github.com/civicledger/disclosure-engine/pkg/repositories"
	"github.com/civicledger/disclosure-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load("config.yaml", Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.String("database_host", cfg.Database.Host))

	// Migrations run over database/sql; the pgx stdlib driver shares the
	// connection settings with the pool below.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open database for migrations", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	normalizer, err := normalize.New()
	if err != nil {
		logger.Fatal("Failed to load alias table", zap.Error(err))
	}

	entityRepo := repositories.NewEntityRepository(db.Pool)
	disclosureRepo := repositories.NewDisclosureRepository(db.Pool)

	registry := services.NewEntityRegistry(entityRepo, disclosureRepo, normalizer, logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	entityHandler := handlers.NewEntityHandler(registry, logger)
	entityHandler.RegisterRoutes(mux)

	disclosureHandler := handlers.NewDisclosureHandler(disclosureRepo, logger)
	disclosureHandler.RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting disclosure-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
