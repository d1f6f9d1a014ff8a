package websocket

import (
	"time"

	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/planner"
	"github.com/team-calendar/backend/internal/storage/models"
)

// EventBroadcaster handles broadcasting WebSocket events.
// Week boundaries in schedule payloads follow loc.
type EventBroadcaster struct {
	hub      *Hub
	location *time.Location
	logger   *zap.Logger
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub, loc *time.Location, logger *zap.Logger) *EventBroadcaster {
	if loc == nil {
		loc = time.UTC
	}
	return &EventBroadcaster{hub: hub, location: loc, logger: logger}
}

// BroadcastScheduleChanged notifies the owner and participants of a schedule.
func (b *EventBroadcaster) BroadcastScheduleChanged(msgType MessageType, s *models.Schedule) {
	payload := SchedulePayload{
		ScheduleID: s.ID,
		Title:      s.Title,
		OwnerID:    s.OwnerID,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		WeekStarts: weekStarts(s.StartTime.In(b.location), s.EndTime.In(b.location)),
	}

	audience := append([]string{s.OwnerID}, s.ParticipantIDs...)
	b.send(NewMessage(msgType, payload), audience)
}

// BroadcastRoomChanged notifies every client of a room change.
func (b *EventBroadcaster) BroadcastRoomChanged(msgType MessageType, room *models.Room) {
	payload := RoomPayload{
		RoomID:   room.ID,
		Name:     room.Name,
		Capacity: room.Capacity,
	}
	b.send(NewMessage(msgType, payload), nil)
}

// BroadcastSettingsUpdated notifies every client that the planner window changed.
func (b *EventBroadcaster) BroadcastSettingsUpdated(s planner.Settings) {
	payload := SettingsPayload{
		StartHour:       s.StartHour,
		EndHour:         s.EndHour,
		IntervalMinutes: s.IntervalMinutes,
	}
	b.send(NewMessage(TypeSettingsUpdated, payload), nil)
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	payload := NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}
	b.send(NewMessage(TypeNotification, payload), nil)
}

func (b *EventBroadcaster) send(msg Message, audience []string) {
	data, err := msg.JSON()
	if err != nil {
		b.logger.Error("encoding websocket message", zap.String("type", string(msg.Type)), zap.Error(err))
		return
	}

	if audience == nil {
		b.hub.Broadcast(data)
		return
	}
	b.hub.BroadcastTo(audience, data)
}

// weekStarts lists the Monday of every week the range [start, end) touches.
func weekStarts(start, end time.Time) []string {
	weeks := []string{}
	if !end.After(start) {
		return weeks
	}
	for w := planner.WeekStart(start); w.Before(end); w = w.AddDate(0, 0, 7) {
		weeks = append(weeks, w.Format("2006-01-02"))
	}
	return weeks
}
