// Package planner builds the weekly planner grid: the business-hour scale,
// per-day event projection and the column layout of overlapping events.
package planner

import (
	"errors"
	"fmt"
)

// ErrConfiguration is returned when the business-hour settings cannot
// produce a single hour slot. It is not recoverable: callers must refuse
// to build a planner.
var ErrConfiguration = errors.New("planner hours configuration produced no slots")

// minIntervalMinutes guards against zero or negative intervals.
const minIntervalMinutes = 15

// minEventMinutes is the shortest duration an event is rendered with.
const minEventMinutes = 15

// Settings holds the business-hour window and the grid granularity.
type Settings struct {
	StartHour       int `json:"start_hour"`
	EndHour         int `json:"end_hour"`
	IntervalMinutes int `json:"interval_minutes"`
}

// DefaultSettings returns the 06:00-22:00 hourly window.
func DefaultSettings() Settings {
	return Settings{StartHour: 6, EndHour: 22, IntervalMinutes: 60}
}

// HourLabel is one row of the hour scale.
type HourLabel struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
}

// BuildHours generates the hour labels from startHour to endHour inclusive.
//
// Only whole-hour steps are supported: when the interval is not a multiple
// of 60 minutes the scale stops after its first label.
func BuildHours(startHour, endHour, intervalMinutes int) ([]HourLabel, error) {
	step := max(intervalMinutes, minIntervalMinutes)

	var hours []HourLabel
	for current := startHour; current <= endHour; current += step / 60 {
		hours = append(hours, HourLabel{
			Hour:  current,
			Label: fmt.Sprintf("%02d:00", current),
		})
		if step%60 != 0 {
			break
		}
	}

	if len(hours) == 0 {
		return nil, fmt.Errorf("%w (start_hour=%d, end_hour=%d, interval_minutes=%d)",
			ErrConfiguration, startHour, endHour, intervalMinutes)
	}
	return hours, nil
}

// Hours is BuildHours applied to the settings.
func (s Settings) Hours() ([]HourLabel, error) {
	return BuildHours(s.StartHour, s.EndHour, s.IntervalMinutes)
}

// Validate reports whether the settings can produce a planner.
func (s Settings) Validate() error {
	if s.StartHour < 0 || s.StartHour > 23 {
		return fmt.Errorf("%w: start_hour %d out of range 0-23", ErrConfiguration, s.StartHour)
	}
	if s.EndHour > 24 {
		return fmt.Errorf("%w: end_hour %d out of range", ErrConfiguration, s.EndHour)
	}
	_, err := s.Hours()
	return err
}
