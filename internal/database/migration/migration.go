package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"catalogapi/internal/logging"
	"catalogapi/internal/model"
)

type migrationStep struct {
	Name string
	Run  func(ctx context.Context, db *bun.DB) error
}

var steps = []migrationStep{
	{
		Name: "create_table_categories",
		Run: func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewCreateTable().
				Model((*model.Category)(nil)).
				IfNotExists().
				Exec(ctx)
			return err
		},
	},
	{
		Name: "create_table_products",
		Run: func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewCreateTable().
				Model((*model.Product)(nil)).
				IfNotExists().
				WithForeignKeys().
				Exec(ctx)
			return err
		},
	},
	{
		Name: "create_index_products_category_id",
		Run: func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewCreateIndex().
				Model((*model.Product)(nil)).
				IfNotExists().
				Index("idx_products_category_id").
				Column("category_id").
				Exec(ctx)
			return err
		},
	},
	{
		Name: "create_index_categories_name",
		Run: func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewCreateIndex().
				Model((*model.Category)(nil)).
				IfNotExists().
				Index("idx_categories_name").
				Column("name").
				Exec(ctx)
			return err
		},
	},
}

// EnsureSchema creates the catalog tables and indexes if they are missing.
// Each step is idempotent, so running at every startup is safe.
func EnsureSchema(ctx context.Context, db *bun.DB, log *logging.Logger) error {
	start := time.Now()
	log.WithFields(logging.Fields{
		"component": "database",
		"event":     "schema_sync_start",
	}).Info("ensuring catalog schema")

	for _, step := range steps {
		stepStart := time.Now()
		if err := step.Run(ctx, db); err != nil {
			log.WithFields(logging.Fields{
				"component":      "database",
				"event":          "schema_sync_failed",
				"migration_step": step.Name,
				"duration_ms":    time.Since(start).Milliseconds(),
			}).WithError(err).Error("schema migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.WithFields(logging.Fields{
			"component":        "database",
			"event":            "schema_sync_step",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}).Debug("schema migration step applied")
	}

	log.WithFields(logging.Fields{
		"component":   "database",
		"event":       "schema_sync_success",
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("catalog schema ready")

	return nil
}
