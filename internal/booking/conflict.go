// Package booking detects rooms that are booked twice at the same time.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/team-calendar/backend/internal/storage/models"
)

// BookingFinder lists the schedules holding a room during [from, to),
// other than excludeID.
type BookingFinder func(ctx context.Context, roomID string, from, to time.Time, excludeID string) ([]models.Schedule, error)

// ConflictChecker detects room double bookings.
type ConflictChecker struct {
	find BookingFinder
}

// NewConflictChecker creates a new conflict checker.
func NewConflictChecker(find BookingFinder) *ConflictChecker {
	return &ConflictChecker{find: find}
}

// Conflict is another schedule holding the same room. Only the overlap is
// reported, not the other schedule's details.
type Conflict struct {
	ScheduleID   string    `json:"schedule_id"`
	OverlapStart time.Time `json:"overlap_start"`
	OverlapEnd   time.Time `json:"overlap_end"`
}

// CheckConflicts lists the bookings of roomID overlapping [start, end).
// A schedule without a room never conflicts.
func (c *ConflictChecker) CheckConflicts(ctx context.Context, roomID *string, start, end time.Time, excludeID string) ([]Conflict, error) {
	if roomID == nil || *roomID == "" {
		return nil, nil
	}

	bookings, err := c.find(ctx, *roomID, start, end, excludeID)
	if err != nil {
		return nil, fmt.Errorf("checking room conflicts: %w", err)
	}

	var conflicts []Conflict
	for _, b := range bookings {
		overlapStart := start
		if b.StartTime.After(overlapStart) {
			overlapStart = b.StartTime
		}

		overlapEnd := end
		if b.EndTime.Before(overlapEnd) {
			overlapEnd = b.EndTime
		}

		conflicts = append(conflicts, Conflict{
			ScheduleID:   b.ID,
			OverlapStart: overlapStart.UTC(),
			OverlapEnd:   overlapEnd.UTC(),
		})
	}

	return conflicts, nil
}

// HasConflict returns true if there are any conflicts.
func (c *ConflictChecker) HasConflict(ctx context.Context, roomID *string, start, end time.Time, excludeID string) (bool, error) {
	conflicts, err := c.CheckConflicts(ctx, roomID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}
