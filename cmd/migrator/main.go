package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"bloglist/internal/platform/config"
	"bloglist/internal/platform/logger"
	"bloglist/internal/platform/migration"
)

func main() {
	if err := run(context.Background(), os.Args); err != nil {
		slog.Error("migrator failed", "error", err)
		os.Exit(1)
	}
}

func run(_ context.Context, args []string) error {
	if len(args) < 2 {
		printUsage()
		return errors.New("missing command")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Parse()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:   logger.Level(cfg.App.LogLevel),
		Format:  logger.Format(cfg.App.LogFormat),
		Service: "bloglist-migrator",
	})

	runner, err := migration.New(migration.Config{
		DatabaseURL: cfg.Database.ConnectionString(),
		SourceURL:   cfg.App.MigrationsPath,
		Logger:      log,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			log.Warn("failed to close migration runner", "error", err)
		}
	}()

	switch args[1] {
	case "up":
		return runner.Up()
	case "down":
		return runner.Down()
	case "version":
		version, dirty, err := runner.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	case "force":
		if len(args) < 3 {
			return errors.New("force requires a version")
		}
		version, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[2], err)
		}
		return runner.Force(version)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  migrator up")
	fmt.Fprintln(os.Stderr, "  migrator down")
	fmt.Fprintln(os.Stderr, "  migrator version")
	fmt.Fprintln(os.Stderr, "  migrator force <version>")
}
