package db

import (
	"context"
	"time"

	"github.com/chepyr/taskflow/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// defines methods for user db operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, username, aboutMe string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

var _ UserRepositoryInterface = (*UserRepository)(nil)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, about_me, last_seen, created_at`

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (` + userColumns + `)
	 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.AboutMe,
		user.LastSeen.UTC(), user.CreatedAt.UTC())
	return mapError("insert user", err)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	if err := sqlx.GetContext(ctx, r.db, user, query, arg); err != nil {
		return nil, mapError("select user", err)
	}
	return user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, username, aboutMe string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = $1, about_me = $2 WHERE id = $3`, username, aboutMe, id)
	if err != nil {
		return mapError("update user profile", err)
	}
	return requireRow(res)
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return mapError("update user password", err)
	}
	return requireRow(res)
}

// TouchLastSeen moves last_seen forward to at. An older timestamp leaves the
// stored value alone, so last_seen never goes backwards. Reports whether a row changed.
func (r *UserRepository) TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_seen = $1 WHERE id = $2 AND last_seen < $1`, at.UTC(), id)
	if err != nil {
		return false, mapError("touch last_seen", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError("touch last_seen", err)
	}
	return n > 0, nil
}
