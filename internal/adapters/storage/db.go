// Package storage implements the repository ports on gorm. Postgres is used in
// deployed environments and SQLite locally and in tests.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jsamuelsen/wellness-service/internal/platform/config"
)

// DB owns the gorm connection pool shared by the repositories.
type DB struct {
	gorm *gorm.DB
}

// Open connects with the configured driver and applies pool settings.
// Migrations run only when cfg.AutoMigrate is set.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*DB, error) {
	if log == nil {
		log = slog.Default()
	}

	var dialector gorm.Dialector

	switch cfg.Driver {
	case "postgres":
		dialector = postgres.New(postgres.Config{DriverName: "pgx", DSN: cfg.DSN})
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log, cfg.LogLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	db := &DB{gorm: gdb}

	if err := db.Check(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	log.InfoContext(ctx, "database connected", slog.String("driver", cfg.Driver))

	return db, nil
}

// Migrate creates or updates the posts, comments and profiles tables.
func (d *DB) Migrate(ctx context.Context) error {
	err := d.gorm.WithContext(ctx).AutoMigrate(&postModel{}, &commentModel{}, &profileModel{})
	if err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (d *DB) Name() string {
	return "database"
}

// Check implements ports.HealthChecker by pinging the pool.
func (d *DB) Check(ctx context.Context) error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return fmt.Errorf("getting sql.DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}

	return nil
}

// Close releases the pool.
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Posts returns the post repository.
func (d *DB) Posts() *PostRepository {
	return &PostRepository{db: d.gorm}
}

// Comments returns the comment repository.
func (d *DB) Comments() *CommentRepository {
	return &CommentRepository{db: d.gorm}
}

// Profiles returns the health profile repository.
func (d *DB) Profiles() *ProfileRepository {
	return &ProfileRepository{db: d.gorm}
}

// slogWriter lets gorm's logger print through slog.
type slogWriter struct {
	log *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.log.Info(fmt.Sprintf(format, args...), slog.String("component", "gorm"))
}

func newGormLogger(log *slog.Logger, level string) logger.Interface {
	lvl := logger.Warn

	switch level {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}

	return logger.New(slogWriter{log: log}, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
