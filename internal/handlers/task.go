package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chepyr/taskflow/internal/models"
	"github.com/chepyr/taskflow/internal/shared"
	"github.com/chepyr/taskflow/internal/workflow"
	"github.com/google/uuid"
)

var errBadDate = errors.New("must be a date in YYYY-MM-DD format")

type taskResponse struct {
	ID          uuid.UUID         `json:"id"`
	OwnerID     uuid.UUID         `json:"owner_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	DueDate     string            `json:"due_date"`
	Status      models.TaskStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func newTaskResponse(t *models.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     models.FormatDate(t.DueDate),
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type taskPageResponse struct {
	Tasks   []taskResponse `json:"tasks"`
	Page    int            `json:"page"`
	HasNext bool           `json:"has_next"`
	HasPrev bool           `json:"has_prev"`
	NextURL string         `json:"next_url,omitempty"`
	PrevURL string         `json:"prev_url,omitempty"`
}

func newTaskPageResponse(p models.Page[models.Task], path string) taskPageResponse {
	resp := taskPageResponse{
		Tasks:   make([]taskResponse, len(p.Items)),
		Page:    p.Page,
		HasNext: p.HasNext,
		HasPrev: p.HasPrev,
	}
	for i := range p.Items {
		resp.Tasks[i] = newTaskResponse(&p.Items[i])
	}
	if p.HasNext {
		resp.NextURL = fmt.Sprintf("%s?page=%d", path, p.NextPage())
	}
	if p.HasPrev {
		resp.PrevURL = fmt.Sprintf("%s?page=%d", path, p.PrevPage())
	}
	return resp
}

// GET /index - newest tasks from everyone, home page size
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.listTasks(w, r, nil, workflow.HomePageSize)
}

// GET /explore - newest tasks from everyone, explore page size
func (h *Handler) Explore(w http.ResponseWriter, r *http.Request) {
	h.listTasks(w, r, nil, workflow.ExplorePageSize)
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request, ownerID *uuid.UUID, size int) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	page, err := h.Tasks.ListTasks(ctx, workflow.ListQuery{OwnerID: ownerID, Page: pageParam(r), PageSize: size})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	shared.SendJSON(w, http.StatusOK, newTaskPageResponse(page, r.URL.Path))
}

// POST /tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		shared.SendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     string `json:"due_date"`
		Status      string `json:"status"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	var due *time.Time
	if strings.TrimSpace(input.DueDate) != "" {
		d, err := models.ParseDate(strings.TrimSpace(input.DueDate))
		if err != nil {
			shared.SendValidationError(w, shared.ValidationErrors{{Field: "due_date", Err: errBadDate}})
			return
		}
		due = &d
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	task, err := h.Tasks.CreateTask(ctx, user.ID, workflow.TaskInput{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     due,
		Status:      models.TaskStatus(input.Status),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.WSHub.BroadcastTaskEvent(EventTaskCreated, task)
	w.Header().Set("Location", "/tasks/"+task.ID.String())
	shared.SendJSON(w, http.StatusCreated, newTaskResponse(task))
}

// GET /tasks/{id} - any authenticated user may view any task
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	task, err := h.Tasks.GetTask(ctx, taskID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	shared.SendJSON(w, http.StatusOK, newTaskResponse(task))
}

// PUT/PATCH /tasks/{id} - owner only; omitted fields keep their value
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		shared.SendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		DueDate     *string `json:"due_date"`
		Status      *string `json:"status"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	upd := workflow.TaskUpdate{Title: input.Title, Description: input.Description}
	if input.DueDate != nil {
		d, err := models.ParseDate(strings.TrimSpace(*input.DueDate))
		if err != nil {
			// existence and ownership are reported before field problems
			if task, gerr := h.Tasks.GetTask(ctx, taskID); gerr != nil {
				writeServiceError(w, r, gerr)
			} else if task.OwnerID != user.ID {
				writeServiceError(w, r, shared.ErrForbidden)
			} else {
				shared.SendValidationError(w, shared.ValidationErrors{{Field: "due_date", Err: errBadDate}})
			}
			return
		}
		upd.DueDate = &d
	}
	if input.Status != nil {
		status := models.TaskStatus(*input.Status)
		upd.Status = &status
	}

	task, err := h.Tasks.EditTask(ctx, user.ID, taskID, upd)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.WSHub.BroadcastTaskEvent(EventTaskUpdated, task)
	shared.SendJSON(w, http.StatusOK, newTaskResponse(task))
}

func taskIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		shared.SendError(w, "task id must be a valid uuid", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
