// internal/database/users.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Lonli-Lokli/vinto/internal/models"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// CreateUser inserts a new user row.
func CreateUser(ctx context.Context, u *models.User) error {
	if DB == nil {
		return errors.New("database: persistence disabled")
	}
	_, err := DB.Exec(ctx, `
INSERT INTO users (id, email, username, password_hash, is_admin, is_ephemeral)
VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.IsAdmin, u.IsEphemeral)
	if err != nil {
		return fmt.Errorf("database: create user: %w", err)
	}
	return nil
}

// GetUserByEmail looks a user up by email.
func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if DB == nil {
		return nil, errors.New("database: persistence disabled")
	}
	var u models.User
	err := DB.QueryRow(ctx, `
SELECT id, email, username, password_hash, is_admin, is_ephemeral, created_at
FROM users WHERE email = $1`, email).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.IsEphemeral, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database: get user by email: %w", err)
	}
	return &u, nil
}

// GetUserByID looks a user up by ID.
func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if DB == nil {
		return nil, errors.New("database: persistence disabled")
	}
	var u models.User
	err := DB.QueryRow(ctx, `
SELECT id, email, username, password_hash, is_admin, is_ephemeral, created_at
FROM users WHERE id = $1`, id).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.IsEphemeral, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database: get user by id: %w", err)
	}
	return &u, nil
}
