package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/team-calendar/backend/internal/planner"
)

// Settings keys for the planner window.
const (
	SettingPlannerStartHour       = "planner_start_hour"
	SettingPlannerEndHour         = "planner_end_hour"
	SettingPlannerIntervalMinutes = "planner_interval_minutes"
)

// SettingsRepository stores runtime overrides of configured values.
type SettingsRepository struct {
	BaseRepository
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// GetPlanner returns the stored planner settings, using fallback for any
// value that was never saved.
func (r *SettingsRepository) GetPlanner(ctx context.Context, fallback planner.Settings) (planner.Settings, error) {
	s := fallback

	fields := []struct {
		key string
		dst *int
	}{
		{SettingPlannerStartHour, &s.StartHour},
		{SettingPlannerEndHour, &s.EndHour},
		{SettingPlannerIntervalMinutes, &s.IntervalMinutes},
	}

	for _, f := range fields {
		value, ok, err := r.get(ctx, f.key)
		if err != nil {
			return fallback, err
		}
		if !ok {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fallback, fmt.Errorf("parsing setting %s=%q: %w", f.key, value, err)
		}
		*f.dst = n
	}

	return s, nil
}

// SetPlanner stores the planner settings in a single transaction.
func (r *SettingsRepository) SetPlanner(ctx context.Context, s planner.Settings) error {
	now := r.Now()
	values := map[string]int{
		SettingPlannerStartHour:       s.StartHour,
		SettingPlannerEndHour:         s.EndHour,
		SettingPlannerIntervalMinutes: s.IntervalMinutes,
	}

	return r.Transaction(ctx, func(tx *sql.Tx) error {
		for key, value := range values {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
			`, key, strconv.Itoa(value), now)
			if err != nil {
				return fmt.Errorf("saving setting %s: %w", key, err)
			}
		}
		return nil
	})
}

func (r *SettingsRepository) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.DB().QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying setting %s: %w", key, err)
	}
	return value, true, nil
}
