package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeScheduleCreated MessageType = "schedule.created"
	TypeScheduleUpdated MessageType = "schedule.updated"
	TypeScheduleDeleted MessageType = "schedule.deleted"
	TypeRoomCreated     MessageType = "room.created"
	TypeRoomUpdated     MessageType = "room.updated"
	TypeRoomDeleted     MessageType = "room.deleted"
	TypeSettingsUpdated MessageType = "settings.updated"
	TypeNotification    MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// SchedulePayload is the payload for schedule.* events. Clients reload the
// planner of each week the schedule touches.
type SchedulePayload struct {
	ScheduleID string    `json:"schedule_id"`
	Title      string    `json:"title"`
	OwnerID    string    `json:"owner_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	WeekStarts []string  `json:"week_starts"`
}

// RoomPayload is the payload for room.* events.
type RoomPayload struct {
	RoomID   string `json:"room_id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity,omitempty"`
}

// SettingsPayload is the payload for settings.updated events.
type SettingsPayload struct {
	StartHour       int `json:"start_hour"`
	EndHour         int `json:"end_hour"`
	IntervalMinutes int `json:"interval_minutes"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
