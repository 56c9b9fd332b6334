package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order. Fresh installs get the
// full schema from SchemaSQL; migrations cover databases created before a
// schema change shipped.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "add_cooldown_seconds_to_automation_rules",
		Up:      migrationV1,
	},
}

// InitSchema creates the schema and applies outstanding migrations.
func InitSchema(conn *sql.DB) error {
	if _, err := conn.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	if err := conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := m.Up(conn); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := conn.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// migrationV1 backfills cooldown_seconds on databases created before rate
// limiting shipped. SchemaSQL already includes the column, so the ALTER is
// a no-op error we can ignore on fresh installs.
func migrationV1(conn *sql.DB) error {
	_, err := conn.Exec(`ALTER TABLE automation_rules ADD COLUMN cooldown_seconds INTEGER NOT NULL DEFAULT 0`)
	if err != nil && !isDuplicateColumn(err) {
		return err
	}
	return nil
}

func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}
