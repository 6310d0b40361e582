// Package posts exposes the legacy microblog table. It only stores and lists.
package posts

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/chepyr/taskflow/internal/db"
	"github.com/chepyr/taskflow/internal/models"
	"github.com/chepyr/taskflow/internal/shared"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	MaxBodyLen = 140
	PageSize   = 5
)

type Service struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db, now: time.Now}
}

func (s *Service) CreatePost(ctx context.Context, authorID uuid.UUID, body string) (*models.Post, error) {
	n := utf8.RuneCountInString(body)
	switch {
	case n == 0:
		return nil, shared.ValidationErrors{{Field: "body", Err: shared.ErrFieldTooShort, Limit: 1}}
	case n > MaxBodyLen:
		return nil, shared.ValidationErrors{{Field: "body", Err: shared.ErrFieldTooLong, Limit: MaxBodyLen}}
	}

	post := &models.Post{ID: uuid.New(), UserID: authorID, Body: body, CreatedAt: s.now().UTC()}
	err := db.WithTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		return db.NewPostRepository(tx).Create(ctx, post)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, page int) (models.Page[models.Post], error) {
	page = models.NormalizePage(page)
	rows, err := db.NewPostRepository(s.db).ListByUser(ctx, userID, models.PageOffset(page, PageSize), PageSize+1)
	if err != nil {
		return models.Page[models.Post]{}, err
	}
	return models.NewPage(rows, page, PageSize), nil
}
