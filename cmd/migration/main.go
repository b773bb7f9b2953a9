package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/fantasy-draft/internal/app"
	"github.com/riskibarqy/fantasy-draft/internal/config"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
)

var errUsage = errors.New("usage")

type options struct {
	dbURL         string
	migrationsDir string
	args          []string
}

func main() {
	logger := logging.New(os.Stderr, logging.LevelInfo).Named("migration")
	defer func() { _ = logger.Sync() }()

	if path, err := config.LoadDotEnv(); err != nil {
		logger.Warn("load .env failed", "error", err)
	} else if path != "" {
		logger.Info("loaded .env", "path", path)
	}

	err := run(os.Args[1:], logger)
	switch {
	case errors.Is(err, errUsage):
		printUsage()
		_ = logger.Sync()
		os.Exit(2)
	case err != nil:
		logger.Error("migration failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(argv []string, logger *logging.Logger) error {
	if len(argv) == 0 {
		return errUsage
	}
	cmd := strings.ToLower(strings.TrimSpace(argv[0]))

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	disableBinary, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("DB_DISABLE_PREPARED_BINARY_RESULT")))

	migrationsDir, err := resolveMigrationsDir()
	if err != nil {
		return err
	}

	opts := options{
		dbURL:         app.NormalizeDBURL(dbURL, disableBinary),
		migrationsDir: migrationsDir,
		args:          argv[1:],
	}

	if cmd == "seed" {
		return seed(opts, logger)
	}

	sourceURL := "file://" + filepath.ToSlash(opts.migrationsDir)
	m, err := migrate.New(sourceURL, opts.dbURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("close migration source", "error", srcErr)
		}
		if dbErr != nil {
			logger.Warn("close migration db", "error", dbErr)
		}
	}()

	switch cmd {
	case "up":
		if err := ignoreNoChange(m.Up(), logger); err != nil {
			return err
		}
		logger.Info("migrations applied", "source", sourceURL)
	case "down":
		steps, err := parseSteps(opts.args)
		if err != nil {
			return err
		}
		if err := ignoreNoChange(m.Steps(-steps), logger); err != nil {
			return err
		}
		logger.Info("rolled back migrations", "steps", steps)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			fmt.Println("dirty: false")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Printf("version: %d\n", version)
		fmt.Printf("dirty: %t\n", dirty)
	case "force":
		if len(opts.args) == 0 {
			return fmt.Errorf("force requires a version argument")
		}
		version, err := parseVersion(opts.args[0])
		if err != nil {
			return err
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
		logger.Info("forced version", "version", version)
	case "goto":
		if len(opts.args) == 0 {
			return fmt.Errorf("goto requires a target version argument")
		}
		target, err := parseVersion(opts.args[0])
		if err != nil {
			return err
		}
		if err := ignoreNoChange(m.Migrate(uint(target)), logger); err != nil {
			return err
		}
		logger.Info("migrated", "version", target)
	default:
		return errUsage
	}
	return nil
}

// seed loads the demo catalog, participants and calendar into a migrated
// database. Existing rows are left in place.
func seed(opts options, logger *logging.Logger) error {
	start, err := time.Parse(time.RFC3339, envOr("SEED_CALENDAR_START", "2026-08-14T18:00:00Z"))
	if err != nil {
		return fmt.Errorf("parse SEED_CALENDAR_START: %w", err)
	}
	weeks, err := strconv.Atoi(envOr("SEED_CALENDAR_WEEKS", "38"))
	if err != nil || weeks < 0 {
		return fmt.Errorf("invalid SEED_CALENDAR_WEEKS %q", os.Getenv("SEED_CALENDAR_WEEKS"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", opts.dbURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if err := postgres.BootstrapSeed(ctx, db, start, weeks); err != nil {
		return fmt.Errorf("bootstrap seed: %w", err)
	}
	logger.Info("seed applied", "calendar_start", start, "weeks", weeks)
	return nil
}

func ignoreNoChange(err error, logger *logging.Logger) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	return value, nil
}

func resolveMigrationsDir() (string, error) {
	candidates := []string{
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("migration directory not found (checked MIGRATIONS_DIR, ./db/migrations, /app/db/migrations)")
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down|version|force|goto|seed> [args]\n", name)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s up\n", name)
	fmt.Fprintf(os.Stderr, "  %s down 1\n", name)
	fmt.Fprintf(os.Stderr, "  %s version\n", name)
	fmt.Fprintf(os.Stderr, "  %s force 1780000100\n", name)
	fmt.Fprintf(os.Stderr, "  %s goto 1780000300\n", name)
	fmt.Fprintf(os.Stderr, "  %s seed\n", name)
}
