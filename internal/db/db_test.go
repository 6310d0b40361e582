package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chepyr/taskflow/internal/models"
	"github.com/chepyr/taskflow/internal/shared"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Connect(DriverSQLite, ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func insertTestUser(t *testing.T, db DBTX, username string) *models.User {
	t.Helper()
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		LastSeen:     now,
		CreatedAt:    now,
	}
	if err := NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate should be a no-op, got %v", err)
	}
}

func TestWithTx_Commit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	var id uuid.UUID
	err := WithTx(ctx, db, func(ctx context.Context, tx DBTX) error {
		id = insertTestUser(t, tx, "alice").ID
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
	if _, err := NewUserRepository(db).GetByID(ctx, id); err != nil {
		t.Fatalf("committed user not found: %v", err)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithTx(ctx, db, func(ctx context.Context, tx DBTX) error {
		insertTestUser(t, tx, "alice")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to leave 0 users, got %d", count)
	}
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		_ = WithTx(ctx, db, func(ctx context.Context, tx DBTX) error {
			insertTestUser(t, tx, "alice")
			panic("boom")
		})
	}()

	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to leave 0 users, got %d", count)
	}
}

func TestMapError(t *testing.T) {
	if err := mapError("op", nil); err != nil {
		t.Fatalf("nil should stay nil, got %v", err)
	}
	err := mapError("op", errors.New("connection reset"))
	if !errors.Is(err, shared.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}
