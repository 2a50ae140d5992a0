package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/haawall/haawall-go/internal/errors"
)

// CreateUser inserts a new account and returns it with its assigned ID.
func (db *DB) CreateUser(ctx context.Context, email, hashedPassword, fullName, userType string) (*User, error) {
	now := time.Now()
	result, err := db.conn.ExecContext(ctx, `
	INSERT INTO users (email, hashed_password, full_name, user_type, is_active, created_at)
	VALUES (?, ?, ?, ?, 1, ?)
	`, email, hashedPassword, fullName, userType, now.Unix())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("email already registered: %w", apperrors.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new user id: %w", err)
	}

	return &User{
		ID:             id,
		Email:          email,
		HashedPassword: hashedPassword,
		FullName:       fullName,
		UserType:       userType,
		IsActive:       true,
		CreatedAt:      now,
	}, nil
}

// GetUserByEmail looks up an account by email address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx, `
	SELECT id, email, hashed_password, full_name, user_type, is_active, created_at
	FROM users WHERE email = ?
	`, email))
}

// GetUserByID looks up an account by its primary key.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx, `
	SELECT id, email, hashed_password, full_name, user_type, is_active, created_at
	FROM users WHERE id = ?
	`, id))
}

// SetUserActive enables or disables an account.
func (db *DB) SetUserActive(ctx context.Context, id int64, active bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET is_active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// CountUsers returns the total number of accounts.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (db *DB) scanUser(row *sql.Row) (*User, error) {
	var user User
	var isActive int
	var createdAt int64
	err := row.Scan(&user.ID, &user.Email, &user.HashedPassword,
		&user.FullName, &user.UserType, &isActive, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	user.IsActive = isActive != 0
	user.CreatedAt = time.Unix(createdAt, 0)
	return &user, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
