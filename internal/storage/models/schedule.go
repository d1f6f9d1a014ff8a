package models

import (
	"time"
)

// Schedule is a time-bounded event owned by one user.
type Schedule struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Location       string    `json:"location"`
	RoomID         *string   `json:"room_id"`
	OwnerID        string    `json:"owner_id"`
	ParticipantIDs []string  `json:"participant_ids"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ScheduleDetail is a schedule joined with the names of its room, owner
// and participants.
type ScheduleDetail struct {
	Schedule
	RoomName     *string       `json:"room_name"`
	OwnerName    string        `json:"owner_name"`
	Participants []Participant `json:"participants"`
}

// Participant is a user a schedule is shared with.
type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
