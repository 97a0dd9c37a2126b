package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// migrations holds all database migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up: `
			-- Projects table
			CREATE TABLE IF NOT EXISTS projects (
				id TEXT PRIMARY KEY,
				name TEXT UNIQUE NOT NULL,
				description TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);

			-- Features table. Flat rows with an optional parent pointer; the
			-- tree is rebuilt in memory per query. No foreign keys: cascades
			-- are application-level, and a dangling parent_id is tolerated
			-- by the tree assembler.
			CREATE TABLE IF NOT EXISTS features (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT,
				project_id TEXT NOT NULL,
				parent_id TEXT,
				images TEXT NOT NULL DEFAULT '[]',
				"order" INTEGER NOT NULL DEFAULT 0,
				has_accounting INTEGER NOT NULL DEFAULT 0,
				is_accounting_done INTEGER NOT NULL DEFAULT 0,
				is_completed INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);

			-- Indexes
			CREATE INDEX IF NOT EXISTS idx_features_project_parent_order ON features(project_id, parent_id, "order");
			CREATE INDEX IF NOT EXISTS idx_features_parent ON features(parent_id);
			CREATE INDEX IF NOT EXISTS idx_features_project_completed ON features(project_id, is_completed);
			CREATE INDEX IF NOT EXISTS idx_features_project_accounting ON features(project_id, has_accounting);
		`,
	},
}

// runMigrations applies all pending migrations.
func runMigrations(db *sql.DB) error {
	// Create migrations table if not exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	// Apply pending migrations
	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Name, time.Now().UTC().Format(timeLayout),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
