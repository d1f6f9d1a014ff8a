package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/team-calendar/backend/internal/storage/models"
)

// RoomRepository provides data access for meeting rooms.
type RoomRepository struct {
	BaseRepository
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *DB) *RoomRepository {
	return &RoomRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new room. A duplicate name yields ErrConflict.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	room.ID = GenerateID()
	room.CreatedAt = r.Now()
	room.UpdatedAt = room.CreatedAt

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO rooms (id, name, capacity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, room.ID, room.Name, room.Capacity, room.CreatedAt, room.UpdatedAt)

	if err != nil {
		return fmt.Errorf("inserting room: %w", translateError(err))
	}

	return nil
}

// GetByID retrieves a room by ID. It returns nil if no room exists.
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*models.Room, error) {
	return r.getOne(ctx, "id", id)
}

// GetByName retrieves a room by its unique name. It returns nil if no room exists.
func (r *RoomRepository) GetByName(ctx context.Context, name string) (*models.Room, error) {
	return r.getOne(ctx, "name", name)
}

func (r *RoomRepository) getOne(ctx context.Context, column, value string) (*models.Room, error) {
	room := &models.Room{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, name, capacity, created_at, updated_at
		FROM rooms WHERE `+column+` = ?
	`, value).Scan(&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying room: %w", err)
	}

	return room, nil
}

// List retrieves all rooms ordered by name.
func (r *RoomRepository) List(ctx context.Context) ([]models.Room, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, name, capacity, created_at, updated_at
		FROM rooms ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	rooms := []models.Room{}
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// Update updates an existing room.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE rooms SET name = ?, capacity = ?, updated_at = ?
		WHERE id = ?
	`, room.Name, room.Capacity, room.UpdatedAt, room.ID)

	if err != nil {
		return fmt.Errorf("updating room: %w", translateError(err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("room %s: %w", room.ID, ErrNotFound)
	}

	return nil
}

// Delete removes a room. Rooms still assigned to schedules yield ErrConflict.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting room: %w", translateError(err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("room %s: %w", id, ErrNotFound)
	}

	return nil
}

// CountSchedules returns how many schedules are assigned to the room.
func (r *RoomRepository) CountSchedules(ctx context.Context, id string) (int, error) {
	var count int
	err := r.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schedules WHERE room_id = ?", id,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting room schedules: %w", err)
	}
	return count, nil
}
