package repository

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the latest schema version this package knows how to
// produce.
const SchemaVersion = 1

// Migrate ensures the SQLite schema exists and is upgraded to
// SchemaVersion, gated by a schema_migrations table so repeated calls
// against an already-current database are no-ops.
func Migrate(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migrate: db is nil")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`); err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current); err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}
	if current >= SchemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS pods (
			id TEXT PRIMARY KEY,
			radio_address INTEGER NOT NULL,
			lot INTEGER NULL,
			serial INTEGER NULL,
			activation_date TEXT NULL,
			insertion_date TEXT NULL,
			reservoir_used_for_priming REAL NULL,
			last_status_json TEXT NULL,
			last_temp_basal_result_id TEXT NULL,
			active_conversation_id TEXT NOT NULL DEFAULT ''
		);
	`); err != nil {
		return fmt.Errorf("migrate: create pods table: %w", err)
	}

	if _, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS exchange_results (
			id TEXT PRIMARY KEY,
			pod_id TEXT NOT NULL,
			request_time TEXT NOT NULL,
			result_time TEXT NOT NULL,
			success INTEGER NOT NULL,
			error_kind TEXT NULL,
			error_message TEXT NULL,
			basal_schedule_json TEXT NULL,
			FOREIGN KEY(pod_id) REFERENCES pods(id)
		);
	`); err != nil {
		return fmt.Errorf("migrate: create exchange_results table: %w", err)
	}

	if _, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_exchange_results_pod_id ON exchange_results(pod_id);`); err != nil {
		return fmt.Errorf("migrate: create exchange_results index: %w", err)
	}

	if _, err = tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?);`, SchemaVersion); err != nil {
		return fmt.Errorf("migrate: record schema version: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit: %w", err)
	}
	return nil
}
