package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hongminglow/payment-gateway/internal/models"
	"github.com/hongminglow/payment-gateway/internal/storage"
)

const userColumns = `id, email, full_name, password_hash, created_at, updated_at`

// CreateUser inserts a new user row. The unique email index turns concurrent
// duplicate signups into storage.ErrAlreadyExists.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (email, full_name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns + `;`
	row := s.pool.QueryRow(ctx, query, user.Email, user.FullName, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

// UpdateUser applies the non-nil fields of update and refreshes updated_at.
func (s *Store) UpdateUser(ctx context.Context, id int64, update models.UserUpdate) (models.User, error) {
	const query = `
		UPDATE users
		SET full_name = COALESCE($2, full_name), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns + `;`
	return scanUser(s.pool.QueryRow(ctx, query, id, update.FullName))
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.FullName, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
