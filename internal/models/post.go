package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is the legacy microblog entry. It is kept for schema compatibility only.
type Post struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
