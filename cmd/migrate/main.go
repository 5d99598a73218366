package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/flexprice/ticketing/internal/config"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	src, err := iofs.New(migrations.FS, migrations.Dir)
	if err != nil {
		logger.Fatalw("failed to open embedded migrations", "error", err)
	}

	logger.Infow("connecting to database",
		"host", cfg.Postgres.Host,
		"port", cfg.Postgres.Port,
		"dbname", cfg.Postgres.DBName)

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.Postgres.GetMigrateURL())
	if err != nil {
		logger.Fatalw("failed to initialize migrations", "error", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			logger.Errorw("failed to close migration resources",
				"source_error", sourceErr,
				"database_error", dbErr)
		}
	}()

	switch command {
	case "up":
		err := m.Up()
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			logger.Info("no change: database is already up to date")
		case err != nil:
			logger.Fatalw("failed to apply migrations", "error", err)
		default:
			logger.Info("migrations applied")
		}

	case "down":
		if err := m.Steps(-1); err != nil {
			logger.Fatalw("failed to roll back the last migration", "error", err)
		}
		logger.Info("rolled back the last migration")

	case "goto":
		if len(os.Args) < 3 {
			logger.Fatal("goto needs a version number")
		}
		version, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			logger.Fatalw("invalid version number", "version", os.Args[2], "error", err)
		}

		err = m.Migrate(uint(version))
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			logger.Infow("no change: database is already at version", "version", version)
		case err != nil:
			logger.Fatalw("failed to migrate to version", "version", version, "error", err)
		default:
			logger.Infow("migrated to version", "version", version)
		}

	case "status":
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			logger.Info("no migrations have been applied yet")
		case err != nil:
			logger.Fatalw("failed to read migration version", "error", err)
		default:
			logger.Infow("current migration version", "version", version, "dirty", dirty)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: migrate <command>")
	fmt.Println("Commands:")
	fmt.Println("  up     - apply every pending migration")
	fmt.Println("  down   - roll back the last migration")
	fmt.Println("  goto N - migrate to version N")
	fmt.Println("  status - print the current migration version")
}
