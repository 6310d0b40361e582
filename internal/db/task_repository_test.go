package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chepyr/taskflow/internal/models"
	"github.com/chepyr/taskflow/internal/shared"
	"github.com/google/uuid"
)

func newTestTask(ownerID uuid.UUID, title string, createdAt time.Time) *models.Task {
	return &models.Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: "desc",
		DueDate:     models.TruncateDate(createdAt.AddDate(0, 0, 7)),
		Status:      models.TaskStatusOpen,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestTaskRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	owner := insertTestUser(t, db, "alice")

	task := newTestTask(owner.ID, "Write report", time.Now().UTC())
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != task.Title || got.OwnerID != owner.ID || got.Status != models.TaskStatusOpen {
		t.Fatalf("unexpected task: %+v", got)
	}
	if !got.DueDate.Equal(task.DueDate) {
		t.Fatalf("expected due date %v, got %v", task.DueDate, got.DueDate)
	}
}

func TestTaskRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := NewTaskRepository(db).GetByID(context.Background(), uuid.New())
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskRepository_Create_UnknownOwner(t *testing.T) {
	db := setupTestDB(t)
	err := NewTaskRepository(db).Create(context.Background(), newTestTask(uuid.New(), "orphan", time.Now()))
	if !errors.Is(err, shared.ErrPersistence) {
		t.Fatalf("expected ErrPersistence for missing owner, got %v", err)
	}
}

func TestTaskRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	owner := insertTestUser(t, db, "alice")

	created := time.Now().UTC().Add(-time.Hour)
	task := newTestTask(owner.ID, "Old", created)
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	task.Title = "New"
	task.Status = models.TaskStatusDone
	task.UpdatedAt = time.Now().UTC()
	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "New" || got.Status != models.TaskStatusDone {
		t.Fatalf("update not applied: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at changed: want %v got %v", created, got.CreatedAt)
	}

	missing := newTestTask(owner.ID, "ghost", created)
	if err := repo.Update(ctx, missing); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	alice := insertTestUser(t, db, "alice")
	bob := insertTestUser(t, db, "bob")

	base := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, owner := range []uuid.UUID{alice.ID, bob.ID, alice.ID} {
		if err := repo.Create(ctx, newTestTask(owner, string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	all, err := repo.List(ctx, nil, 0, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 || all[0].Title != "c" || all[2].Title != "a" {
		t.Fatalf("expected newest first [c b a], got %+v", all)
	}

	mine, err := repo.List(ctx, &alice.ID, 0, 10)
	if err != nil {
		t.Fatalf("List by owner failed: %v", err)
	}
	if len(mine) != 2 || mine[0].Title != "c" || mine[1].Title != "a" {
		t.Fatalf("expected alice's [c a], got %+v", mine)
	}

	beyond, err := repo.List(ctx, nil, 10, 5)
	if err != nil {
		t.Fatalf("List past the end failed: %v", err)
	}
	if len(beyond) != 0 {
		t.Fatalf("expected no rows past the end, got %d", len(beyond))
	}
}

func TestPostRepository_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	alice := insertTestUser(t, db, "alice")

	base := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, body := range []string{"first", "second"} {
		post := &models.Post{ID: uuid.New(), UserID: alice.ID, Body: body, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := repo.Create(ctx, post); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	posts, err := repo.ListByUser(ctx, alice.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(posts) != 2 || posts[0].Body != "second" {
		t.Fatalf("expected newest first, got %+v", posts)
	}
}
