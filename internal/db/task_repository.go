package db

import (
	"context"

	"github.com/chepyr/taskflow/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// defines methods for task db operations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	List(ctx context.Context, ownerID *uuid.UUID, offset, limit int) ([]models.Task, error)
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, owner_id, title, description, due_date, status, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.OwnerID, task.Title, task.Description, models.TruncateDate(task.DueDate),
		task.Status, task.CreatedAt.UTC(), task.UpdatedAt.UTC())
	return mapError("insert task", err)
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task := &models.Task{}
	err := sqlx.GetContext(ctx, r.db, task, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if err != nil {
		return nil, mapError("select task", err)
	}
	return task, nil
}

// Update overwrites the editable fields. Owner and created_at are never touched.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = $1, description = $2, due_date = $3, status = $4, updated_at = $5
		 WHERE id = $6`,
		task.Title, task.Description, models.TruncateDate(task.DueDate), task.Status,
		task.UpdatedAt.UTC(), task.ID)
	if err != nil {
		return mapError("update task", err)
	}
	return requireRow(res)
}

// List returns tasks newest first, optionally restricted to one owner.
func (r *TaskRepository) List(ctx context.Context, ownerID *uuid.UUID, offset, limit int) ([]models.Task, error) {
	var (
		tasks []models.Task
		err   error
	)
	if ownerID == nil {
		err = sqlx.SelectContext(ctx, r.db, &tasks,
			`SELECT `+taskColumns+` FROM tasks
			 ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	} else {
		err = sqlx.SelectContext(ctx, r.db, &tasks,
			`SELECT `+taskColumns+` FROM tasks WHERE owner_id = $1
			 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, *ownerID, limit, offset)
	}
	if err != nil {
		return nil, mapError("list tasks", err)
	}
	return tasks, nil
}
