package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

type index struct {
	table string
	name  string
	ddl   string
}

// postgresIndexes are the indexes AutoMigrate cannot express.
var postgresIndexes = []index{
	// Board listing filters by owner, newest first
	{"tasks", "idx_tasks_owner_created_at", "CREATE INDEX %s ON %s (owner_id, created_at DESC)"},
	{"tasks", "idx_tasks_status", "CREATE INDEX %s ON %s (status)"},
	// One task in progress per owner, across every API instance
	{"tasks", "uniq_tasks_owner_doing", "CREATE UNIQUE INDEX %s ON %s (owner_id) WHERE status = 'doing' AND deleted_at IS NULL"},
}

// MigratePostgres creates the missing Postgres-only indexes.
func MigratePostgres(db *gorm.DB) error {
	for _, idx := range postgresIndexes {
		if err := ensureIndex(db, idx); err != nil {
			return fmt.Errorf("failed to add indexes: %w", err)
		}
	}
	return nil
}

func ensureIndex(db *gorm.DB, idx index) error {
	var count int64
	err := db.Raw(
		"SELECT COUNT(*) FROM pg_indexes WHERE tablename = ? AND indexname = ?",
		idx.table, idx.name,
	).Scan(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", idx.name, err)
	}
	if count > 0 {
		return nil
	}

	if err := db.Exec(fmt.Sprintf(idx.ddl, idx.name, idx.table)).Error; err != nil {
		return fmt.Errorf("failed to create index %s: %w", idx.name, err)
	}
	log.Printf("Created index %s on %s", idx.name, idx.table)
	return nil
}
