// Package repository implements internal/manager.Repository: persistence
// of a pod's current record and the result of its most recent exchange.
//
// SQLiteRepository is the production implementation, backed by
// modernc.org/sqlite (pure Go, no cgo) with a schema_migrations-gated
// migration, grounded on the pack's Peony module's internal/storage.
// MapRepository is an in-memory implementation for tests.
package repository
