package migration

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"bloglist/migrations"
)

// Config holds migration configuration.
type Config struct {
	DatabaseURL string
	// SourceURL overrides the embedded schema, e.g. "file://migrations".
	SourceURL string
	Logger    *slog.Logger
}

// Runner applies the users and entries schema.
type Runner struct {
	m      *migrate.Migrate
	logger *slog.Logger
}

func New(cfg Config) (*Runner, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("database url is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m, err := open(cfg)
	if err != nil {
		return nil, err
	}
	return &Runner{m: m, logger: logger}, nil
}

func open(cfg Config) (*migrate.Migrate, error) {
	if cfg.SourceURL != "" {
		m, err := migrate.New(cfg.SourceURL, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open migrations %s: %w", cfg.SourceURL, err)
		}
		return m, nil
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	return m, nil
}

// Up applies every pending migration.
func (r *Runner) Up() error {
	if err := r.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return r.report("schema up to date")
}

// Down rolls back the latest migration only.
func (r *Runner) Down() error {
	if err := r.m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return r.report("rolled back one migration")
}

// Force marks version as applied and clears the dirty flag.
func (r *Runner) Force(version int) error {
	if err := r.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return r.report("version forced")
}

// Version is 0 on an empty database.
func (r *Runner) Version() (version uint, dirty bool, err error) {
	version, dirty, err = r.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

func (r *Runner) report(msg string) error {
	version, dirty, err := r.Version()
	if err != nil {
		return err
	}
	r.logger.Info(msg, "version", version, "dirty", dirty)
	return nil
}

func (r *Runner) Close() error {
	srcErr, dbErr := r.m.Close()
	return errors.Join(srcErr, dbErr)
}
