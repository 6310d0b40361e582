// Package workflow enforces the task creation and edit rules and the
// ownership check that guards edits. Viewing and listing are open to any
// authenticated user; only the owner may edit.
package workflow

import (
	"context"
	"time"

	"github.com/chepyr/taskflow/internal/db"
	"github.com/chepyr/taskflow/internal/models"
	"github.com/chepyr/taskflow/internal/shared"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	HomePageSize    = 5
	ProfilePageSize = 5
	ExplorePageSize = 20
)

type Service struct {
	db  *sqlx.DB
	now func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *sqlx.DB, opts ...Option) *Service {
	s := &Service{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TaskUpdate carries a partial edit. Nil fields keep the stored value.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *models.TaskStatus
}

type ListQuery struct {
	OwnerID  *uuid.UUID
	Page     int
	PageSize int
}

func (s *Service) CreateTask(ctx context.Context, creatorID uuid.UUID, in TaskInput) (*models.Task, error) {
	if in.Status == "" {
		in.Status = models.TaskStatusOpen
	}
	now := s.now().UTC()
	if err := ValidateFields(in, now); err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          uuid.New(),
		OwnerID:     creatorID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     models.TruncateDate(*in.DueDate),
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := db.WithTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		return db.NewTaskRepository(tx).Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// EditTask applies upd to the task on behalf of actorID. Checks run in order:
// the task must exist, the actor must own it, then the merged fields must
// validate. Identifier, owner and creation time are never changed.
func (s *Service) EditTask(ctx context.Context, actorID, taskID uuid.UUID, upd TaskUpdate) (*models.Task, error) {
	var task *models.Task
	err := db.WithTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		tasks := db.NewTaskRepository(tx)
		current, err := tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if current.OwnerID != actorID {
			return shared.ErrForbidden
		}

		merged := TaskInput{
			Title:       current.Title,
			Description: current.Description,
			DueDate:     &current.DueDate,
			Status:      current.Status,
		}
		if upd.Title != nil {
			merged.Title = *upd.Title
		}
		if upd.Description != nil {
			merged.Description = *upd.Description
		}
		if upd.DueDate != nil {
			merged.DueDate = upd.DueDate
		}
		if upd.Status != nil {
			merged.Status = *upd.Status
		}

		now := s.now().UTC()
		if err := ValidateFields(merged, now); err != nil {
			return err
		}

		current.Title = merged.Title
		current.Description = merged.Description
		current.DueDate = models.TruncateDate(*merged.DueDate)
		current.Status = merged.Status
		current.UpdatedAt = now
		if err := tasks.Update(ctx, current); err != nil {
			return err
		}
		task = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask returns any task by id. There is no ownership check.
func (s *Service) GetTask(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	return db.NewTaskRepository(s.db).GetByID(ctx, taskID)
}

// ListTasks returns one newest-first page. Pages past the end are empty.
func (s *Service) ListTasks(ctx context.Context, q ListQuery) (models.Page[models.Task], error) {
	size := q.PageSize
	if size <= 0 {
		size = HomePageSize
	}
	page := models.NormalizePage(q.Page)

	rows, err := db.NewTaskRepository(s.db).List(ctx, q.OwnerID, models.PageOffset(page, size), size+1)
	if err != nil {
		return models.Page[models.Task]{}, err
	}
	return models.NewPage(rows, page, size), nil
}
