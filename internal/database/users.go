package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hotelbook/internal/models"
)

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, email, first_name, last_name, phone, role, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	_, err := db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Role,
		user.CreatedAt.UTC(),
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translateErr(err))
	}
	return nil
}

func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, email, first_name, last_name, phone, role, created_at, updated_at
              FROM users WHERE id = ?`

	var (
		user            models.User
		lastName, phone sql.NullString
	)
	err := db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&lastName,
		&phone,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, translateErr(err))
	}
	user.LastName = lastName.String
	user.Phone = phone.String
	return &user, nil
}

func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET email = ?, first_name = ?, last_name = ?, phone = ?, role = ?, updated_at = ?
              WHERE id = ?`
	user.UpdatedAt = time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Role,
		user.UpdatedAt,
		user.ID,
	)
	return checkAffected(result, err, "update user", user.ID)
}

func (db *DB) DeleteUser(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return checkAffected(result, err, "delete user", id)
}
