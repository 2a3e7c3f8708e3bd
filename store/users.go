package store

import (
	"context"
	"errors"
	"fmt"
	"spotfinder/db"
	"spotfinder/models"
)

type UserStore struct {
	db db.DBTX
}

func NewUserStore(conn db.DBTX) *UserStore {
	return &UserStore{db: conn}
}

func (s *UserStore) Create(ctx context.Context, username, email, passwordHash string) (models.User, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		username, email, passwordHash,
	).Scan(&id)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", db.MapError(err))
	}

	return s.GetByID(ctx, id)
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (models.User, error) {
	return s.getOne(ctx, `WHERE id = $1`, id)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.getOne(ctx, `WHERE email = $1`, email)
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return s.getOne(ctx, `WHERE username = $1`, username)
}

func (s *UserStore) getOne(ctx context.Context, where string, arg any) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, COALESCE(points, 0), created_at
		 FROM users `+where,
		arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Points, &u.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", db.MapError(err))
	}
	return u, nil
}

// AddPoints increments the stored points by delta in a single statement, a
// NULL balance counting as zero, and returns the updated user. A delta that
// would leave the balance negative changes nothing and returns
// ErrNegativeBalance.
func (s *UserStore) AddPoints(ctx context.Context, id int64, delta int) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`UPDATE users SET points = COALESCE(points, 0) + $1
		 WHERE id = $2 AND COALESCE(points, 0) + $1 >= 0
		 RETURNING id, username, email, points`,
		delta, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Points)
	if err == nil {
		return u, nil
	}

	err = db.MapError(err)
	if !errors.Is(err, db.ErrNotFound) {
		return models.User{}, fmt.Errorf("add points: %w", err)
	}

	if _, getErr := s.GetByID(ctx, id); getErr != nil {
		return models.User{}, getErr
	}
	return models.User{}, ErrNegativeBalance
}
