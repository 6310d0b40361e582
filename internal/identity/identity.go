// Package identity owns user accounts: registration, credential checks,
// profile edits and the last-seen activity marker.
package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chepyr/taskflow/internal/db"
	"github.com/chepyr/taskflow/internal/models"
	"github.com/chepyr/taskflow/internal/shared"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

const (
	MaxUsernameLen = 64
	MaxEmailLen    = 120
	MaxAboutMeLen  = 140
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type Service struct {
	db         *sqlx.DB
	now        func() time.Time
	bcryptCost int
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func NewService(db *sqlx.DB, opts ...Option) *Service {
	s := &Service{db: db, now: time.Now, bcryptCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account. Username is checked for uniqueness before
// email, so a request colliding on both reports ErrDuplicateUsername.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	var errs shared.ValidationErrors
	errs = append(errs, checkUsername(username)...)
	switch {
	case email == "":
		errs = append(errs, &shared.FieldError{Field: "email", Err: shared.ErrMissingField})
	case utf8.RuneCountInString(email) > MaxEmailLen:
		errs = append(errs, &shared.FieldError{Field: "email", Err: shared.ErrFieldTooLong, Limit: MaxEmailLen})
	case !emailRe.MatchString(email):
		errs = append(errs, &shared.FieldError{Field: "email", Err: shared.ErrInvalidEmail})
	}
	if password == "" {
		errs = append(errs, &shared.FieldError{Field: "password", Err: shared.ErrMissingField})
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		LastSeen:     now,
		CreatedAt:    now,
	}

	err = db.WithTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		users := db.NewUserRepository(tx)
		if err := ensureFree(ctx, users.GetByUsername, username, shared.ErrDuplicateUsername); err != nil {
			return err
		}
		if err := ensureFree(ctx, users.GetByEmail, email, shared.ErrDuplicateEmail); err != nil {
			return err
		}
		return users.Create(ctx, user)
	})
	if err != nil {
		return nil, duplicateFromConstraint(err)
	}
	return user, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords produce the same ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := db.NewUserRepository(s.db).GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// TouchActivity records that the user was active now. last_seen never moves backwards.
func (s *Service) TouchActivity(ctx context.Context, userID uuid.UUID) error {
	_, err := db.NewUserRepository(s.db).TouchLastSeen(ctx, userID, s.now())
	return err
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return db.NewUserRepository(s.db).GetByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.NewUserRepository(s.db).GetByUsername(ctx, username)
}

// UpdateProfile changes the actor's own username and about text. The
// username is only checked for collisions when it actually changes.
func (s *Service) UpdateProfile(ctx context.Context, actorID uuid.UUID, username, aboutMe string) (*models.User, error) {
	username = strings.TrimSpace(username)

	errs := shared.ValidationErrors(checkUsername(username))
	if utf8.RuneCountInString(aboutMe) > MaxAboutMeLen {
		errs = append(errs, &shared.FieldError{Field: "about_me", Err: shared.ErrFieldTooLong, Limit: MaxAboutMeLen})
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	var user *models.User
	err := db.WithTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		users := db.NewUserRepository(tx)
		current, err := users.GetByID(ctx, actorID)
		if err != nil {
			return err
		}
		if username != current.Username {
			if err := ensureFree(ctx, users.GetByUsername, username, shared.ErrDuplicateUsername); err != nil {
				return err
			}
		}
		if err := users.UpdateProfile(ctx, actorID, username, aboutMe); err != nil {
			return err
		}
		current.Username = username
		current.AboutMe = aboutMe
		user = current
		return nil
	})
	if err != nil {
		return nil, duplicateFromConstraint(err)
	}
	return user, nil
}

// ChangePassword replaces the actor's password after re-checking the old one.
func (s *Service) ChangePassword(ctx context.Context, actorID uuid.UUID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return shared.ValidationErrors{{Field: "new_password", Err: shared.ErrMissingField}}
	}

	return db.WithTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		users := db.NewUserRepository(tx)
		user, err := users.GetByID(ctx, actorID)
		if err != nil {
			return err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
			return shared.ValidationErrors{{Field: "old_password", Err: shared.ErrWrongPassword}}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		return users.UpdatePasswordHash(ctx, actorID, string(hash))
	})
}

func checkUsername(username string) []*shared.FieldError {
	switch {
	case username == "":
		return []*shared.FieldError{{Field: "username", Err: shared.ErrMissingField}}
	case utf8.RuneCountInString(username) > MaxUsernameLen:
		return []*shared.FieldError{{Field: "username", Err: shared.ErrFieldTooLong, Limit: MaxUsernameLen}}
	}
	return nil
}

func ensureFree(ctx context.Context, lookup func(context.Context, string) (*models.User, error), value string, dup error) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return dup
	case errors.Is(err, shared.ErrNotFound):
		return nil
	default:
		return err
	}
}

// duplicateFromConstraint turns a unique-constraint hit that slipped past the
// lookups (a concurrent registration) into the matching duplicate error.
func duplicateFromConstraint(err error) error {
	var uv *db.UniqueViolationError
	if !errors.As(err, &uv) {
		return err
	}
	switch {
	case strings.Contains(uv.Column, "email"):
		return shared.ErrDuplicateEmail
	default:
		return shared.ErrDuplicateUsername
	}
}
