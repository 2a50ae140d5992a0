package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/haawall/haawall-go/internal/errors"
)

// UpsertInfo inserts or replaces one institutional fact.
// The (category, key) pair is unique; a second write overwrites the value.
func (db *DB) UpsertInfo(ctx context.Context, category, key, value string) error {
	query := `
	INSERT INTO info (category, key, value, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(category, key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
	`

	if _, err := db.conn.ExecContext(ctx, query, category, key, value, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to upsert info entry: %w", err)
	}

	return nil
}

// GetInfoByCategory returns all facts in one category, ordered by key.
func (db *DB) GetInfoByCategory(ctx context.Context, category string) ([]InfoEntry, error) {
	query := `
	SELECT id, category, key, value, updated_at
	FROM info
	WHERE category = ?
	ORDER BY key
	`

	rows, err := db.conn.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query info category: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanInfoEntries(rows)
}

// GetAllInfo returns every stored fact, ordered by category then key.
func (db *DB) GetAllInfo(ctx context.Context) ([]InfoEntry, error) {
	query := `
	SELECT id, category, key, value, updated_at
	FROM info
	ORDER BY category, key
	`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query info entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanInfoEntries(rows)
}

// ListInfoCategories returns the distinct categories present in the info table.
func (db *DB) ListInfoCategories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM info ORDER BY category`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query info categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// DeleteInfo removes one fact by category and key.
func (db *DB) DeleteInfo(ctx context.Context, category, key string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM info WHERE category = ? AND key = ?`, category, key)
	if err != nil {
		return fmt.Errorf("failed to delete info entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// CountInfo returns the total number of stored facts.
func (db *DB) CountInfo(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM info`).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count info entries: %w", err)
	}
	return count, nil
}

func scanInfoEntries(rows *sql.Rows) ([]InfoEntry, error) {
	var entries []InfoEntry
	for rows.Next() {
		var entry InfoEntry
		var updatedAt int64
		if err := rows.Scan(&entry.ID, &entry.Category, &entry.Key, &entry.Value, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan info entry: %w", err)
		}
		entry.UpdatedAt = time.Unix(updatedAt, 0)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
