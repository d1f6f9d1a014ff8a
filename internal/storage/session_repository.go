package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/team-calendar/backend/internal/storage/models"
)

// SessionRepository stores issued login tokens by hash.
type SessionRepository struct {
	BaseRepository
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Save records a session.
func (r *SessionRepository) Save(ctx context.Context, s *models.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.Now()
	}
	s.ExpiresAt = timestamp(s.ExpiresAt)

	_, err := r.DB().ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions (token_hash, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`, s.TokenHash, s.UserID, s.ExpiresAt, s.CreatedAt)

	if err != nil {
		return fmt.Errorf("inserting session: %w", translateError(err))
	}

	return nil
}

// Lookup retrieves a session by token hash. It returns nil if none exists.
func (r *SessionRepository) Lookup(ctx context.Context, tokenHash string) (*models.Session, error) {
	s := &models.Session{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT token_hash, user_id, expires_at, created_at
		FROM sessions WHERE token_hash = ?
	`, tokenHash).Scan(&s.TokenHash, &s.UserID, &s.ExpiresAt, &s.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	return s, nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	if _, err := r.DB().ExecContext(ctx, "DELETE FROM sessions WHERE token_hash = ?", tokenHash); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions that expired before now and returns how many.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", timestamp(now))
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return result.RowsAffected()
}
