package handlers

import (
	"context"
	"net/http"

	"github.com/chepyr/taskflow/internal/shared"
)

// POST /posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentUser(r.Context())
	if !ok {
		shared.SendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var input struct {
		Body string `json:"body"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	post, err := h.Posts.CreatePost(ctx, actor.ID, input.Body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	shared.SendJSON(w, http.StatusCreated, post)
}

// GET /users/{username}/posts
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.Users.GetByUsername(ctx, r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := h.Posts.ListByUser(ctx, user.ID, pageParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	shared.SendJSON(w, http.StatusOK, page)
}
