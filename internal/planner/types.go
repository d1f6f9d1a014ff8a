package planner

import (
	"context"
	"time"
)

// Person is a user as seen by the planner.
type Person struct {
	ID   string
	Name string
}

// Schedule is a read-only calendar entry fed into the planner.
type Schedule struct {
	ID           string
	Title        string
	Start        time.Time
	End          time.Time
	Location     string
	RoomName     *string
	Owner        *Person
	Participants []Person
}

// IsOwnedBy reports whether viewerID owns the schedule.
func (s Schedule) IsOwnedBy(viewerID string) bool {
	return s.Owner != nil && s.Owner.ID == viewerID
}

// ScheduleSource fetches the schedules visible to viewerID that overlap
// [from, to).
type ScheduleSource func(ctx context.Context, viewerID string, from, to time.Time) ([]Schedule, error)

// Event is a schedule clipped to one day's display window. Column fields
// are only written by AssignColumns.
type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Location        *string   `json:"location"`
	Room            *string   `json:"room"`
	StartMinutes    int       `json:"start_minutes"`
	EndMinutes      int       `json:"end_minutes"`
	DurationMinutes int       `json:"duration_minutes"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DisplayStart    time.Time `json:"display_start"`
	DisplayEnd      time.Time `json:"display_end"`
	Owner           string    `json:"owner"`
	Column          int       `json:"column"`
	ColumnSpan      int       `json:"column_span"`
	ColumnOffset    int       `json:"column_offset"`
	IsOwner         bool      `json:"is_owner"`
	Participants    []string  `json:"participants"`
	AriaLabel       string    `json:"aria_label"`
}

// Day is one column of the weekly grid.
type Day struct {
	Date         time.Time `json:"date"`
	Label        string    `json:"label"`
	CellLabels   []string  `json:"cell_labels"`
	Events       []Event   `json:"events"`
	DisplayStart time.Time `json:"display_start"`
	DisplayHours int       `json:"display_hours"`
}

// Planner is the assembled week view.
type Planner struct {
	WeekStart time.Time   `json:"week_start"`
	Hours     []HourLabel `json:"hours"`
	Days      []Day       `json:"days"`
	StartHour int         `json:"start_hour"`
	EndHour   int         `json:"end_hour"`
}
