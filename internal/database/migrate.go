package database

import (
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	DSN string
	// UseSQL runs the versioned files in Dir through golang-migrate. Postgres only.
	UseSQL bool
	Dir    string
}

// Migrate brings the schema up to date, either from SQL files or with gorm AutoMigrate of models.
func Migrate(db *gorm.DB, opts MigrateOptions, log *zap.Logger, models ...any) error {
	if opts.UseSQL && IsPostgres(opts.DSN) {
		dir := opts.Dir
		if dir == "" {
			dir = "migrations"
		}
		log.Info("running sql migrations", zap.String("dir", dir))
		return runSQLMigrations(dir, opts.DSN)
	}

	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	log.Info("schema auto-migrated", zap.Int("models", len(models)))
	return nil
}

func runSQLMigrations(dir, dsn string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
