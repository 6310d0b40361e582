package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/chepyr/taskflow/internal/identity"
	"github.com/chepyr/taskflow/internal/models"
	"github.com/chepyr/taskflow/internal/shared"
	"github.com/chepyr/taskflow/internal/workflow"
	"github.com/google/uuid"
)

const profileAvatarSize = 128

type profileResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	AboutMe  string    `json:"about_me"`
	LastSeen time.Time `json:"last_seen"`
	Avatar   string    `json:"avatar"`
}

func newProfileResponse(u *models.User) profileResponse {
	return profileResponse{
		ID:       u.ID,
		Username: u.Username,
		AboutMe:  u.AboutMe,
		LastSeen: u.LastSeen,
		Avatar:   identity.AvatarURL(u.Email, profileAvatarSize),
	}
}

// GET /users/{username} - profile plus that user's tasks
func (h *Handler) UserProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.Users.GetByUsername(ctx, r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := h.Tasks.ListTasks(ctx, workflow.ListQuery{
		OwnerID:  &user.ID,
		Page:     pageParam(r),
		PageSize: workflow.ProfilePageSize,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	shared.SendJSON(w, http.StatusOK, map[string]any{
		"user":  newProfileResponse(user),
		"tasks": newTaskPageResponse(page, r.URL.Path),
	})
}

// PUT /profile
func (h *Handler) EditProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentUser(r.Context())
	if !ok {
		shared.SendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var input struct {
		Username string `json:"username"`
		AboutMe  string `json:"about_me"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.Users.UpdateProfile(ctx, actor.ID, input.Username, input.AboutMe)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	shared.SendJSON(w, http.StatusOK, newProfileResponse(user))
}

// PUT /profile/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentUser(r.Context())
	if !ok {
		shared.SendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var input struct {
		OldPassword  string `json:"old_password"`
		NewPassword  string `json:"new_password"`
		NewPassword2 string `json:"new_password2"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.NewPassword != input.NewPassword2 {
		shared.SendValidationError(w, shared.ValidationErrors{{Field: "new_password2", Err: errPasswordMismatch}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Users.ChangePassword(ctx, actor.ID, input.OldPassword, input.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
