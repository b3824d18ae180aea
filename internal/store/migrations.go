package store

import "fmt"

// Schema versions:
// v1: releases table (version, counts, notes, source)
// v2: pr_url column for the bump PR link
const currentSchemaVersion = 2

// migration adds one column to an existing table. Additive-only: old rows
// get the default, old binaries ignore the new column.
type migration struct {
	table  string
	column string
	def    string
}

var pendingMigrations = []migration{
	{"releases", "pr_url", "TEXT DEFAULT ''"},
}

// migrate brings the schema up to currentSchemaVersion.
func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err != nil {
		// Fresh database.
		version = 0
	}

	if version >= currentSchemaVersion {
		return nil
	}

	for _, m := range pendingMigrations {
		if s.columnExists(m.table, m.column) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.table, m.column, m.def)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %s.%s failed: %w", m.table, m.column, err)
		}
		s.log.Info("applied migration: %s.%s", m.table, m.column)
	}

	if _, err := s.db.Exec(`DELETE FROM schema_version`); err != nil {
		return fmt.Errorf("failed to reset schema version: %w", err)
	}
	if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, currentSchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// columnExists checks table metadata for a column.
func (s *Store) columnExists(table, column string) bool {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}
