package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_posts",
		SQL: `CREATE TABLE IF NOT EXISTS posts (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title      TEXT        NOT NULL CHECK (char_length(title) BETWEEN 5 AND 50),
  content    TEXT        NOT NULL CHECK (char_length(content) BETWEEN 20 AND 5000),
  image_name TEXT        NOT NULL CHECK (image_name <> ''),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_posts_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at);`,
	},
	{
		Name: "create_table_products",
		SQL: `CREATE TABLE IF NOT EXISTS products (
  id          UUID             PRIMARY KEY DEFAULT uuid_generate_v4(),
  name        TEXT             NOT NULL CHECK (char_length(name) BETWEEN 5 AND 50),
  description TEXT             NOT NULL CHECK (char_length(description) BETWEEN 10 AND 2000),
  price       DOUBLE PRECISION NOT NULL CHECK (price >= 0 AND price <= 9999999),
  image_names TEXT[]           NOT NULL DEFAULT '{}' CHECK (array_position(image_names, '') IS NULL),
  created_at  TIMESTAMPTZ      NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_products_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_products_created_at ON products (created_at);`,
	},
}

// EnsureMigrated checks if the 'products' table exists and runs migrations if it doesn't.
// Every step is idempotent, so a partially applied schema is completed on the next start.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.products') IS NOT NULL AND to_regclass('public.posts') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel tables: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
