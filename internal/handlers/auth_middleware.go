package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/chepyr/taskflow/internal/logging"
	"github.com/chepyr/taskflow/internal/models"
	"github.com/chepyr/taskflow/internal/shared"
)

type ctxKey int

const currentUserKey ctxKey = iota

func withCurrentUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// CurrentUser returns the authenticated account set by AuthMiddleware.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(currentUserKey).(*models.User)
	return user, ok && user != nil
}

/*
Verifies the bearer token, loads the account it names, records activity and
puts the account into the request context. Handlers receive the acting user
from the context and pass it explicitly into the services.
*/
func (h *Handler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			shared.SendError(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}
		userID, err := h.Tokens.Parse(tokenString)
		if err != nil {
			shared.SendError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		user, err := h.Users.GetByID(ctx, userID)
		if errors.Is(err, shared.ErrNotFound) {
			shared.SendError(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if err := h.Users.TouchActivity(ctx, user.ID); err != nil {
			logging.FromContext(ctx).Warn("touch activity failed", "user_id", user.ID, "err", err)
		}

		reqCtx := logging.With(withCurrentUser(r.Context(), user), "user_id", user.ID.String())
		next(w, r.WithContext(reqCtx))
	}
}

// bearerToken reads the Authorization header. Websocket handshakes from
// browsers cannot set headers, so they may pass ?token= instead.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}
