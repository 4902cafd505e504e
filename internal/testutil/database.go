// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/conorfennell/knoldeck/internal/storage"
	"github.com/conorfennell/knoldeck/internal/storage/migrations"
)

// NewTestDB opens a fully migrated SQLite database in a temporary directory.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *storage.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "knoldeck.db")
	db, err := storage.Open(context.Background(), path, storage.DefaultBusyTimeout)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := migrations.MigrateUp(db.Conn()); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}
