package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/team-calendar/backend/internal/storage/models"
)

const scheduleDetailColumns = `
	s.id, s.title, s.start_time, s.end_time, s.location, s.room_id,
	s.owner_id, s.created_at, s.updated_at, r.name, u.username`

const scheduleDetailJoins = `
	FROM schedules s
	JOIN users u ON u.id = s.owner_id
	LEFT JOIN rooms r ON r.id = s.room_id`

// ScheduleRepository provides data access for schedules and their participants.
type ScheduleRepository struct {
	BaseRepository
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a schedule together with its participants.
func (r *ScheduleRepository) Create(ctx context.Context, s *models.Schedule) error {
	s.ID = GenerateID()
	s.CreatedAt = r.Now()
	s.UpdatedAt = s.CreatedAt
	s.StartTime = timestamp(s.StartTime)
	s.EndTime = timestamp(s.EndTime)

	return r.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO schedules (
				id, title, start_time, end_time, location, room_id, owner_id, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			s.ID, s.Title, s.StartTime, s.EndTime, s.Location, s.RoomID,
			s.OwnerID, s.CreatedAt, s.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting schedule: %w", translateError(err))
		}

		return insertParticipants(ctx, tx, s.ID, s.ParticipantIDs)
	})
}

// GetByID retrieves a schedule with room, owner and participant names.
// It returns nil if no schedule exists.
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*models.ScheduleDetail, error) {
	rows, err := r.DB().QueryContext(ctx, `SELECT `+scheduleDetailColumns+scheduleDetailJoins+`
		WHERE s.id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying schedule: %w", err)
	}

	details, err := r.scanDetails(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, nil
	}
	return &details[0], nil
}

// ListVisible retrieves the schedules the user owns or participates in that
// overlap [from, to), ordered by start time.
func (r *ScheduleRepository) ListVisible(ctx context.Context, userID string, from, to time.Time) ([]models.ScheduleDetail, error) {
	rows, err := r.DB().QueryContext(ctx, `SELECT `+scheduleDetailColumns+scheduleDetailJoins+`
		WHERE (s.owner_id = ? OR EXISTS (
			SELECT 1 FROM schedule_participants p
			WHERE p.schedule_id = s.id AND p.user_id = ?
		))
		AND s.start_time < ? AND s.end_time > ?
		ORDER BY s.start_time, s.id
	`, userID, userID, timestamp(to), timestamp(from))
	if err != nil {
		return nil, fmt.Errorf("querying visible schedules: %w", err)
	}

	return r.scanDetails(ctx, rows)
}

// ListRoomBookings returns the schedules holding roomID during [from, to),
// other than excludeID.
func (r *ScheduleRepository) ListRoomBookings(ctx context.Context, roomID string, from, to time.Time, excludeID string) ([]models.Schedule, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, title, start_time, end_time, owner_id
		FROM schedules
		WHERE room_id = ? AND id != ? AND start_time < ? AND end_time > ?
		ORDER BY start_time, id
	`, roomID, excludeID, timestamp(to), timestamp(from))
	if err != nil {
		return nil, fmt.Errorf("querying room bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Schedule{}
	for rows.Next() {
		var s models.Schedule
		if err := rows.Scan(&s.ID, &s.Title, &s.StartTime, &s.EndTime, &s.OwnerID); err != nil {
			return nil, fmt.Errorf("scanning room booking: %w", err)
		}
		s.RoomID = &roomID
		bookings = append(bookings, s)
	}
	return bookings, rows.Err()
}

// Update replaces a schedule's fields and participants.
func (r *ScheduleRepository) Update(ctx context.Context, s *models.Schedule) error {
	s.UpdatedAt = r.Now()
	s.StartTime = timestamp(s.StartTime)
	s.EndTime = timestamp(s.EndTime)

	return r.Transaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE schedules SET
				title = ?, start_time = ?, end_time = ?, location = ?, room_id = ?, updated_at = ?
			WHERE id = ?
		`, s.Title, s.StartTime, s.EndTime, s.Location, s.RoomID, s.UpdatedAt, s.ID)
		if err != nil {
			return fmt.Errorf("updating schedule: %w", translateError(err))
		}

		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			return fmt.Errorf("schedule %s: %w", s.ID, ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM schedule_participants WHERE schedule_id = ?", s.ID); err != nil {
			return fmt.Errorf("deleting participants: %w", err)
		}

		return insertParticipants(ctx, tx, s.ID, s.ParticipantIDs)
	})
}

// Delete removes a schedule and its participant rows.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting schedule: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}

	return nil
}

func insertParticipants(ctx context.Context, q Queryable, scheduleID string, userIDs []string) error {
	for _, userID := range userIDs {
		_, err := q.ExecContext(ctx, `
			INSERT OR IGNORE INTO schedule_participants (schedule_id, user_id) VALUES (?, ?)
		`, scheduleID, userID)
		if err != nil {
			return fmt.Errorf("inserting participant: %w", translateError(err))
		}
	}
	return nil
}

// scanDetails reads the joined schedule rows and attaches participants.
func (r *ScheduleRepository) scanDetails(ctx context.Context, rows *sql.Rows) ([]models.ScheduleDetail, error) {
	defer rows.Close()

	details := []models.ScheduleDetail{}
	index := make(map[string]int)
	for rows.Next() {
		var d models.ScheduleDetail
		if err := rows.Scan(
			&d.ID, &d.Title, &d.StartTime, &d.EndTime, &d.Location, &d.RoomID,
			&d.OwnerID, &d.CreatedAt, &d.UpdatedAt, &d.RoomName, &d.OwnerName,
		); err != nil {
			return nil, fmt.Errorf("scanning schedule: %w", err)
		}
		d.ParticipantIDs = []string{}
		d.Participants = []models.Participant{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(details) == 0 {
		return details, nil
	}

	args := make([]any, len(details))
	for i, d := range details {
		args[i] = d.ID
	}

	prows, err := r.DB().QueryContext(ctx, `
		SELECT p.schedule_id, u.id, u.username
		FROM schedule_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.schedule_id IN (`+placeholders(len(args))+`)
		ORDER BY u.username
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying participants: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var scheduleID string
		var p models.Participant
		if err := prows.Scan(&scheduleID, &p.ID, &p.Username); err != nil {
			return nil, fmt.Errorf("scanning participant: %w", err)
		}
		d := &details[index[scheduleID]]
		d.ParticipantIDs = append(d.ParticipantIDs, p.ID)
		d.Participants = append(d.Participants, p)
	}

	return details, prows.Err()
}
