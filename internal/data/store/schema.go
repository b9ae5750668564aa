package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the newest migration this build understands.
const SchemaVersion = 2

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS runs (
  run_id TEXT PRIMARY KEY,
  started_utc TEXT NOT NULL,
  documents INTEGER NOT NULL,
  failed_documents INTEGER NOT NULL DEFAULT 0,
  elements INTEGER NOT NULL,
  resolved INTEGER NOT NULL,
  ambiguous INTEGER NOT NULL,
  unresolved INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL DEFAULT 0,
  created_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_utc);

CREATE TABLE IF NOT EXISTS elements (
  run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
  id TEXT NOT NULL,
  name TEXT NOT NULL,
  full_name TEXT NOT NULL,
  language TEXT NOT NULL,
  kind TEXT NOT NULL,
  namespace TEXT NOT NULL DEFAULT '',
  brief TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (run_id, id)
);
CREATE INDEX IF NOT EXISTS idx_elements_name ON elements(run_id, name);
CREATE INDEX IF NOT EXISTS idx_elements_full_name ON elements(run_id, full_name);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS unresolved (
  run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  language TEXT NOT NULL,
  namespace TEXT NOT NULL DEFAULT '',
  occurrences INTEGER NOT NULL DEFAULT 1,
  PRIMARY KEY (run_id, name, language, namespace)
);
`,
	},
}

func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema_migrations version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
