package handlers

import (
	"log/slog"
	"net/http"

	"github.com/chepyr/taskflow/internal/logging"
)

// Routes wires every endpoint onto a mux wrapped in request logging.
func (h *Handler) Routes(logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("POST /register", h.RateLimit(h.Register))
	mux.HandleFunc("POST /login", h.RateLimit(h.Login))

	mux.HandleFunc("GET /{$}", h.AuthMiddleware(h.Index))
	mux.HandleFunc("GET /index", h.AuthMiddleware(h.Index))
	mux.HandleFunc("GET /explore", h.AuthMiddleware(h.Explore))

	mux.HandleFunc("GET /users/{username}", h.AuthMiddleware(h.UserProfile))
	mux.HandleFunc("GET /users/{username}/posts", h.AuthMiddleware(h.ListPosts))
	mux.HandleFunc("PUT /profile", h.AuthMiddleware(h.EditProfile))
	mux.HandleFunc("PUT /profile/password", h.AuthMiddleware(h.ChangePassword))

	mux.HandleFunc("POST /tasks", h.AuthMiddleware(h.CreateTask))
	mux.HandleFunc("GET /tasks/{id}", h.AuthMiddleware(h.GetTask))
	mux.HandleFunc("PUT /tasks/{id}", h.AuthMiddleware(h.UpdateTask))
	mux.HandleFunc("PATCH /tasks/{id}", h.AuthMiddleware(h.UpdateTask))

	mux.HandleFunc("POST /posts", h.AuthMiddleware(h.CreatePost))
	mux.HandleFunc("GET /ws", h.AuthMiddleware(h.HandleWebSocket))

	return logging.HTTPMiddleware(logger)(mux)
}
