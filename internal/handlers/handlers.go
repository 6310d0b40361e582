package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chepyr/taskflow/internal/auth"
	"github.com/chepyr/taskflow/internal/identity"
	"github.com/chepyr/taskflow/internal/logging"
	"github.com/chepyr/taskflow/internal/posts"
	"github.com/chepyr/taskflow/internal/shared"
	"github.com/chepyr/taskflow/internal/workflow"
	"github.com/jmoiron/sqlx"
)

const (
	requestTimeout = 5 * time.Second
	maxBodyBytes   = 1 << 20 // 1MB
)

type Handler struct {
	DB          *sqlx.DB
	Users       *identity.Service
	Tasks       *workflow.Service
	Posts       *posts.Service
	Tokens      *auth.TokenIssuer
	RateLimiter *RateLimiter
	WSHub       *WSHub
	// AllowedOrigins lists websocket origins; empty means same host only.
	AllowedOrigins []string
	// TrustProxyHeaders makes clientIP honour X-Forwarded-For and X-Real-IP.
	// Enable only behind a reverse proxy that overwrites them.
	TrustProxyHeaders bool
}

// decodeJSON enforces a JSON content type and the body size limit before decoding into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !isJSONContentType(r) {
		shared.SendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		shared.SendError(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func isJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(strings.ToLower(ct), "application/json")
}

// writeServiceError maps the error taxonomy onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs shared.ValidationErrors
	var ferr *shared.FieldError
	switch {
	case errors.As(err, &verrs):
		shared.SendValidationError(w, verrs)
	case errors.As(err, &ferr):
		shared.SendValidationError(w, shared.ValidationErrors{ferr})
	case errors.Is(err, shared.ErrNotFound):
		shared.SendError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, shared.ErrForbidden):
		shared.SendError(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, shared.ErrDuplicateUsername), errors.Is(err, shared.ErrDuplicateEmail):
		shared.SendError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, shared.ErrInvalidCredentials):
		shared.SendError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, context.DeadlineExceeded):
		logging.FromContext(r.Context()).Error("request timed out", "err", err)
		shared.SendError(w, "Request timed out", http.StatusGatewayTimeout)
	default:
		logging.FromContext(r.Context()).Error("request failed", "err", err)
		shared.SendError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// pageParam reads ?page=, defaulting to 1 for missing or malformed values.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// clientIP returns the socket address host. With trustProxy it prefers the
// first X-Forwarded-For hop, then X-Real-IP.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := forwardedIP(r); ip != "" {
			return ip
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func forwardedIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		logging.FromContext(ctx).Error("health check failed", "err", err)
		shared.SendJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	shared.SendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
