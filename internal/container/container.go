package container

import (
	"context"
	"fmt"
	"log"

	"finsight/adapters/postgres"
	"finsight/internal/config"
	"finsight/internal/dataset"
	"finsight/internal/errors"
	"finsight/internal/migration"
	"finsight/internal/pages"
	"finsight/internal/session"
	"finsight/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	DatasetRepo ports.DatasetRepository

	// Upload handling
	Store  *session.Store
	Files  *dataset.LocalFileStorage
	Loader *dataset.Loader

	// Page rendering
	Pages *pages.Env
}

// New creates a container without upload history. Call InitWithDatabase to enable it.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Store:  session.NewStore(),
		Pages:  pages.NewEnv(cfg),
	}
	c.Loader = dataset.NewLoader(c.Store, dataset.WithMaxBytes(cfg.Upload.MaxBytes()))

	return c, nil
}

// OpenDatabase connects to the configured history database and runs migrations
func OpenDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	if !cfg.Database.Enabled() {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.ConnectContext(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("failed to connect to database: %w", err))
	}
	if cfg.Database.Driver == "sqlite" {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

// InitWithDatabase enables upload history backed by db
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.DatasetRepo = postgres.NewDatasetRepository(db)
	c.Files = dataset.NewLocalFileStorageWithPath(c.Config.Upload.Dir)
	c.Loader = dataset.NewLoader(c.Store,
		dataset.WithMaxBytes(c.Config.Upload.MaxBytes()),
		dataset.WithFileStorage(c.Files),
		dataset.WithHistory(c.DatasetRepo),
	)

	log.Printf("[Container] Upload history enabled (%s)", db.DriverName())
	return nil
}

// RestoreLatest re-publishes the most recent recorded upload, if any
func (c *Container) RestoreLatest(ctx context.Context) error {
	if c.DatasetRepo == nil {
		return nil
	}
	latest, err := c.DatasetRepo.Latest(ctx)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			return nil
		}
		return err
	}
	if _, err := c.Loader.Activate(ctx, latest.ID); err != nil {
		return errors.Wrapf(err, "failed to restore upload %s", latest.ID)
	}
	return nil
}

// Shutdown releases the database connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB == nil {
		return nil
	}
	log.Printf("[Container] Closing database connection")
	return c.DB.Close()
}
