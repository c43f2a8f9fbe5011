package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/getmentor/mentorship-api/config"
	"github.com/getmentor/mentorship-api/pkg/db"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of migrations to apply (0 = all)")
	path := flag.String("path", "file://migrations", "migrations source URL")
	flag.Parse()

	cfg, err := config.LoadForMigrations()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: "mentorship-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	dir := db.Direction(*direction)
	if dir != db.Up && dir != db.Down {
		logger.Fatal("Unknown migration direction", zap.String("direction", *direction))
	}
	if dir == db.Down && *steps == 0 {
		// rolling back everything must be asked for explicitly
		logger.Fatal("Refusing to roll back all migrations; pass -steps")
	}

	logger.Info("Starting database migrations",
		zap.String("database", maskDatabaseURL(cfg.Database.URL)),
		zap.String("direction", *direction),
		zap.Int("steps", *steps))

	tlsCfg := db.TLSConfig{CAFile: cfg.Database.TLSCAFile, ServerName: cfg.Database.TLSServerName}
	if err := db.Migrate(cfg.Database.URL, *path, tlsCfg, dir, *steps); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Database migrations completed successfully")
}

// maskDatabaseURL hides credentials in the database URL for logging
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
