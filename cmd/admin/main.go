package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	domainEntry "bloglist/internal/domain/entry"
	infraPostgres "bloglist/internal/infra/postgres"
	infraRedis "bloglist/internal/infra/redis"
	"bloglist/internal/platform/cache"
	"bloglist/internal/platform/config"
	"bloglist/internal/platform/database"
	"bloglist/internal/platform/logger"
	"bloglist/internal/platform/telemetry"
)

const keyPrefix = "bloglist:"

func main() {
	if err := run(context.Background(), os.Args, os.Stdout); err != nil {
		slog.Error("admin command failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) < 2 {
		printUsage()
		return errors.New("missing command")
	}
	switch args[1] {
	case "stats":
		return runStats(ctx, out)
	case "cache":
		return runCache(ctx, args[2:])
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  admin stats")
	fmt.Fprintln(os.Stderr, "  admin cache purge --yes")
}

func runCache(ctx context.Context, args []string) error {
	if len(args) < 1 {
		printUsage()
		return errors.New("missing cache subcommand")
	}
	switch args[0] {
	case "purge":
		return runCachePurge(ctx, args[1:])
	default:
		printUsage()
		return fmt.Errorf("unknown cache subcommand: %s", args[0])
	}
}

func runStats(ctx context.Context, out io.Writer) error {
	cfg, log, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	db, err := database.New(ctx, database.FromSettings(cfg.Database), log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	entries, err := infraPostgres.NewEntryRepository(db.Pool).List(ctx)
	if err != nil {
		return err
	}
	printStats(out, domainEntry.Summarize(entries))
	return nil
}

func printStats(out io.Writer, stats domainEntry.Stats) {
	fmt.Fprintf(out, "entries:     %d\n", stats.Count)
	fmt.Fprintf(out, "total likes: %d\n", stats.TotalLikes)
	fmt.Fprintf(out, "most likes:  %d\n", stats.MostLikes)
	if stats.Favorite != nil {
		fmt.Fprintf(out, "favorite:    %s (%s)\n", stats.Favorite.Title, stats.Favorite.URL)
	}
}

func runCachePurge(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("cache purge", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	batchSize := flags.Int64("batch-size", 500, "SCAN batch size")
	yes := flags.Bool("yes", false, "required confirmation")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errors.New("--yes is required")
	}

	cfg, log, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	redisClient, err := cache.New(cache.FromSettings(cfg.Redis, keyPrefix), log)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		_ = redisClient.Close()
	}()

	deleted, err := redisClient.DeleteByPattern(ctx, infraRedis.EntryKeyPattern, *batchSize)
	if err != nil {
		return err
	}
	log.Info("cache purge completed", "pattern", keyPrefix+infraRedis.EntryKeyPattern, "deleted", deleted)
	return nil
}

func setup() (*config.Config, *slog.Logger, func(), error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, func() {}, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Parse()
	if err != nil {
		return nil, nil, func() {}, fmt.Errorf("load config: %w", err)
	}

	sentryEnabled, err := telemetry.InitSentry(cfg.Sentry, "bloglist-admin")
	if err != nil {
		return nil, nil, func() {}, fmt.Errorf("init sentry: %w", err)
	}

	log := logger.New(logger.Config{
		Level:   logger.Level(cfg.App.LogLevel),
		Format:  logger.Format(cfg.App.LogFormat),
		Service: "bloglist-admin",
	})
	if sentryEnabled {
		log = logger.WrapWithSentry(log)
	}
	logger.SetDefault(log)

	cleanup := func() {
		if sentryEnabled {
			telemetry.Flush(2 * time.Second)
		}
	}
	return cfg, log, cleanup, nil
}
