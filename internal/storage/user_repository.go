package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/team-calendar/backend/internal/storage/models"
)

// UserRepository provides data access for registered users.
type UserRepository struct {
	BaseRepository
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new user. A taken username yields ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = GenerateID()
	user.CreatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, user.ID, user.Username, user.PasswordHash, user.CreatedAt)

	if err != nil {
		return fmt.Errorf("inserting user: %w", translateError(err))
	}

	return nil
}

// GetByID retrieves a user by ID. It returns nil if no user exists.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "id", id)
}

// GetByUsername retrieves a user by username. It returns nil if no user exists.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username", username)
}

func (r *UserRepository) getOne(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users WHERE `+column+` = ?
	`, value).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return user, nil
}

// List retrieves all users ordered by username.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	return r.query(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users ORDER BY username
	`)
}

// ListByIDs retrieves the users with the given IDs. Unknown IDs are ignored.
func (r *UserRepository) ListByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return r.query(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users WHERE id IN (`+placeholders(len(ids))+`)
		ORDER BY username
	`, args...)
}

func (r *UserRepository) query(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
