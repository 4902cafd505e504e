package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateUp(t *testing.T) {
	t.Run("creates every table", func(t *testing.T) {
		db := openDB(t)
		if err := MigrateUp(db); err != nil {
			t.Fatalf("MigrateUp() error = %v", err)
		}

		for _, table := range []string{"files", "cells", "repetitions", "reviews", "sources"} {
			var name string
			err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
			if err != nil {
				t.Errorf("table %s missing: %v", table, err)
			}
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		db := openDB(t)
		if err := MigrateUp(db); err != nil {
			t.Fatalf("first MigrateUp() error = %v", err)
		}
		if err := MigrateUp(db); err != nil {
			t.Fatalf("second MigrateUp() error = %v", err)
		}
	})
}

func TestCheckStatus(t *testing.T) {
	t.Run("reports version 0 before migrating", func(t *testing.T) {
		db := openDB(t)
		st, err := CheckStatus(db)
		if err != nil {
			t.Fatalf("CheckStatus() error = %v", err)
		}
		if st.Version != 0 || st.Latest != 2 || st.Current() {
			t.Errorf("CheckStatus() = %+v", st)
		}
	})

	t.Run("reports current after migrating", func(t *testing.T) {
		db := openDB(t)
		if err := MigrateUp(db); err != nil {
			t.Fatalf("MigrateUp() error = %v", err)
		}
		st, err := CheckStatus(db)
		if err != nil {
			t.Fatalf("CheckStatus() error = %v", err)
		}
		if !st.Current() || st.Version != 2 {
			t.Errorf("CheckStatus() = %+v, want current at version 2", st)
		}
	})
}
