// Package testutil provides a migrated in-memory database for package tests.
package testutil

import (
	"testing"

	"github.com/chepyr/taskflow/internal/db"
	"github.com/jmoiron/sqlx"
)

// NewTestDB opens an in-memory SQLite database with foreign keys enforced and
// the schema applied. It is closed when the test finishes.
func NewTestDB(t testing.TB) *sqlx.DB {
	t.Helper()
	conn, err := db.Connect(db.DriverSQLite, ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}
