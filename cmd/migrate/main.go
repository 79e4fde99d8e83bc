package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/migration"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)

	flag.StringVar(&migrationsPath, "path", defaultMigrationsPath, "Path to migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	zapLogger, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync() //nolint:errcheck

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	command := args[0]

	// create does not need a database connection
	if command == "create" {
		if len(args) < 2 {
			zapLogger.Fatal("create requires a migration name")
		}
		created, err := migration.CreateMigration(migrationsPath, args[1])
		if err != nil {
			zapLogger.Fatal("failed to create migration", zap.Error(err))
		}
		zapLogger.Info("migration created",
			zap.String("up", created.UpPath),
			zap.String("down", created.DownPath))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		zapLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if err := db.Ping(); err != nil {
		zapLogger.Fatal("failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, migrationsPath, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to create migrator", zap.Error(err))
	}
	defer m.Close() //nolint:errcheck

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			zapLogger.Fatal("migration up failed", zap.Error(err))
		}
	case "down":
		if err := m.Down(); err != nil {
			zapLogger.Fatal("migration down failed", zap.Error(err))
		}
	case "steps":
		if len(args) < 2 {
			zapLogger.Fatal("steps requires a count (negative rolls back)")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			zapLogger.Fatal("invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			zapLogger.Fatal("migration steps failed", zap.Error(err))
		}
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			zapLogger.Fatal("failed to read migration version", zap.Error(err))
		}
		zapLogger.Info("current migration version",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty))
	case "force":
		if len(args) < 2 {
			zapLogger.Fatal("force requires a version")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			zapLogger.Fatal("invalid version", zap.String("value", args[1]))
		}
		if err := m.Force(version); err != nil {
			zapLogger.Fatal("migration force failed", zap.Error(err))
		}
	case "list":
		names, err := migration.ListMigrations(migrationsPath)
		if err != nil {
			zapLogger.Fatal("failed to list migrations", zap.Error(err))
		}
		for _, name := range names {
			fmt.Println(name)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [flags] <command>

Commands:
  up             Apply all pending migrations
  down           Roll back all migrations
  steps <n>      Apply n migrations (negative rolls back)
  version        Print the current migration version
  force <v>      Force the migration version (repair a dirty state)
  create <name>  Create a new up/down migration pair
  list           List migrations in the migrations directory

Flags:
  -path       Path to migrations directory (default: migrations)
  -log-level  Log level (default: info)`)
}
