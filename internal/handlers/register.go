package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/chepyr/taskflow/internal/logging"
	"github.com/chepyr/taskflow/internal/shared"
)

var errPasswordMismatch = errors.New("must match password")

// POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Password2 string `json:"password2"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.Password != input.Password2 {
		shared.SendValidationError(w, shared.ValidationErrors{{Field: "password2", Err: errPasswordMismatch}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.Users.Register(ctx, input.Username, input.Email, input.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logging.FromContext(ctx).Info("user registered", "user_id", user.ID, "username", user.Username)
	w.Header().Set("Location", "/users/"+user.Username)
	shared.SendJSON(w, http.StatusCreated, map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username   string `json:"username"`
		Password   string `json:"password"`
		RememberMe bool   `json:"remember_me"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.Users.Authenticate(ctx, input.Username, input.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			logging.FromContext(ctx).Info("login rejected", "username", input.Username)
		}
		writeServiceError(w, r, err)
		return
	}

	token, expires, err := h.Tokens.Issue(user.ID, input.RememberMe)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logging.FromContext(ctx).Info("user logged in", "user_id", user.ID)
	shared.SendJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": expires.UTC(),
		"user_id":    user.ID,
		"username":   user.Username,
	})
}
