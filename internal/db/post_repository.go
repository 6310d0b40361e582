package db

import (
	"context"

	"github.com/chepyr/taskflow/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PostRepositoryInterface interface {
	Create(ctx context.Context, post *models.Post) error
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Post, error)
}

var _ PostRepositoryInterface = (*PostRepository)(nil)

type PostRepository struct {
	db DBTX
}

func NewPostRepository(db DBTX) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `INSERT INTO posts (id, user_id, body, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, post.ID, post.UserID, post.Body, post.CreatedAt.UTC())
	return mapError("insert post", err)
}

func (r *PostRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := sqlx.SelectContext(ctx, r.db, &posts,
		`SELECT id, user_id, body, created_at FROM posts WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, mapError("list posts", err)
	}
	return posts, nil
}
