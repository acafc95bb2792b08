package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new user.
func (r *PGRepo) Create(ctx context.Context, u User) error {
	const query = `
INSERT INTO users (id, email, name, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5)`

	var passwordHash sql.NullString
	if u.PasswordHash != "" {
		passwordHash = sql.NullString{String: u.PasswordHash, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, query, u.ID, u.Email, u.Name, passwordHash, u.CreatedAt)
	if err != nil && strings.Contains(err.Error(), "users_email_key") {
		return ErrEmailTaken
	}
	return err
}

// GetByID fetches a user by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (User, error) {
	const query = `
SELECT id, email, name, password_hash, created_at
FROM users
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

// GetByEmail fetches a user by email.
func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `
SELECT id, email, name, password_hash, created_at
FROM users
WHERE email = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	var u User
	var passwordHash sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.Name, &passwordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if passwordHash.Valid {
		u.PasswordHash = passwordHash.String
	}
	return u, nil
}

var _ Repo = (*PGRepo)(nil)
