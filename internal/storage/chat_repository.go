package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/haawall/haawall-go/internal/errors"
)

// CreateChatSession starts a new conversation, optionally owned by a user.
func (db *DB) CreateChatSession(ctx context.Context, id string, userID *int64) (*ChatSession, error) {
	now := time.Now()
	_, err := db.conn.ExecContext(ctx, `
	INSERT INTO chat_sessions (id, user_id, created_at) VALUES (?, ?, ?)
	`, id, userID, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}

	return &ChatSession{ID: id, UserID: userID, CreatedAt: now}, nil
}

// GetChatSession looks up one conversation by ID.
func (db *DB) GetChatSession(ctx context.Context, id string) (*ChatSession, error) {
	var session ChatSession
	var userID sql.NullInt64
	var createdAt int64
	err := db.conn.QueryRowContext(ctx, `
	SELECT id, user_id, created_at FROM chat_sessions WHERE id = ?
	`, id).Scan(&session.ID, &userID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan chat session: %w", err)
	}

	if userID.Valid {
		session.UserID = &userID.Int64
	}
	session.CreatedAt = time.Unix(createdAt, 0)
	return &session, nil
}

// SaveChatMessage appends one turn to a conversation.
func (db *DB) SaveChatMessage(ctx context.Context, msg *ChatMessage) error {
	now := time.Now()
	result, err := db.conn.ExecContext(ctx, `
	INSERT INTO chat_messages (session_id, role, content, tier, language, source, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`, msg.SessionID, msg.Role, msg.Content, msg.Tier, msg.Language, msg.Source, now.Unix())
	if err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new message id: %w", err)
	}

	msg.ID = id
	msg.CreatedAt = now
	return nil
}

// GetChatMessages returns a conversation's turns oldest first, up to limit.
// A limit of zero or less returns all messages.
func (db *DB) GetChatMessages(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	query := `
	SELECT id, session_id, role, content, tier, language, source, created_at
	FROM chat_messages
	WHERE session_id = ?
	ORDER BY id
	`
	args := []any{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []ChatMessage
	for rows.Next() {
		var msg ChatMessage
		var tier, language, source sql.NullString
		var createdAt int64
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content,
			&tier, &language, &source, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		msg.Tier = tier.String
		msg.Language = language.String
		msg.Source = source.String
		msg.CreatedAt = time.Unix(createdAt, 0)
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// DeleteExpiredSessions removes conversations older than ttl along with
// their messages (via the session foreign key cascade).
func (db *DB) DeleteExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl).Unix()
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM chat_sessions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
