package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"notary/internal/dbs/postgres"
	"notary/internal/entities"
	"notary/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pkg = "userRepo/"

// staff logins are unique case-insensitively, see users_login_lower_key
type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) AddUser(ctx context.Context, user models.User) error {
	op := pkg + "AddUser"

	_, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO users (id, login, pass_hash, created_at) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Login, user.PassHash, user.CreatedAt)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &models.UniqueConstraintError{
				Constraint: pgErr.Constraint,
				Err:        models.ErrUserExists,
			}
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	op := pkg + "UserByLogin"

	var raw entities.User

	err := postgres.Conn(ctx, r.db).GetContext(ctx, &raw,
		`SELECT
			u.id AS id,
			u.login AS login,
			u.pass_hash AS pass_hash,
			u.created_at AS created_at
		FROM users u
		WHERE lower(u.login) = lower($1)`, login)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toModel(raw), nil
}

func toModel(raw entities.User) *models.User {
	return &models.User{
		ID:        raw.ID,
		Login:     raw.Login,
		PassHash:  raw.PassHash,
		CreatedAt: raw.CreatedAt,
	}
}
