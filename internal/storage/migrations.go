package storage

import (
	"database/sql"
	"fmt"
	"strings"
)

// migration is one forward-only schema step
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "users and items",
		stmts: []string{
			`CREATE TABLE users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT NOT NULL UNIQUE,
				email TEXT NOT NULL,
				hashed_password TEXT NOT NULL,
				is_active INTEGER NOT NULL DEFAULT 1
			)`,
			`CREATE TABLE items (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				description TEXT,
				price REAL NOT NULL DEFAULT 0,
				owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
			)`,
		},
	},
	{
		version: 2,
		name:    "item owner index",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id)`,
		},
	},
}

// migrate applies every migration newer than the recorded version, one
// transaction per step
func (ss *SQLiteStorage) migrate() error {
	var version sql.NullInt64
	err := ss.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("checking migration version: %w", err)
	}

	for _, m := range migrations {
		if version.Valid && int64(m.version) <= version.Int64 {
			continue
		}
		if err := ss.applyMigration(m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

func (ss *SQLiteStorage) applyMigration(m migration) error {
	tx, err := ss.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration
func (ss *SQLiteStorage) SchemaVersion() (int, error) {
	var version sql.NullInt64
	if err := ss.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
