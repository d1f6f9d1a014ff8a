package planner

import (
	"time"

	"go.uber.org/zap"
)

// daysPerWeek is the number of day columns in a planner.
const daysPerWeek = 7

// window is a day's calendar bounds and its business-hour display range.
type window struct {
	dayStart     time.Time
	dayEnd       time.Time
	displayStart time.Time
	displayEnd   time.Time
}

// dayWindow computes the bounds of the day dayIndex days after weekStart,
// using wall-clock dates in weekStart's location.
func (b *Builder) dayWindow(weekStart time.Time, dayIndex int) window {
	y, m, d := weekStart.Date()
	loc := weekStart.Location()
	return window{
		dayStart:     time.Date(y, m, d+dayIndex, 0, 0, 0, 0, loc),
		dayEnd:       time.Date(y, m, d+dayIndex+1, 0, 0, 0, 0, loc),
		displayStart: time.Date(y, m, d+dayIndex, b.settings.StartHour, 0, 0, 0, loc),
		displayEnd:   time.Date(y, m, d+dayIndex, b.settings.EndHour, 0, 0, 0, loc),
	}
}

// Project splits schedules into the seven days of the week starting at
// weekStart, clipping each to the day's display window. Events carry
// default column values; see AssignColumns.
func (b *Builder) Project(schedules []Schedule, weekStart time.Time, viewerID string) [daysPerWeek][]Event {
	weekStart = b.normalizeWeekStart(weekStart)

	for _, s := range schedules {
		if !s.End.After(s.Start) {
			b.logger.Warn("schedule ends before it starts",
				zap.String("schedule_id", s.ID),
				zap.Time("start", s.Start),
				zap.Time("end", s.End),
			)
		}
	}

	var days [daysPerWeek][]Event
	for dayIndex := 0; dayIndex < daysPerWeek; dayIndex++ {
		w := b.dayWindow(weekStart, dayIndex)
		events := []Event{}
		for _, s := range schedules {
			if ev, ok := b.projectOne(s, w, viewerID); ok {
				events = append(events, ev)
			}
		}
		days[dayIndex] = events
	}
	return days
}

// projectOne clips a schedule to a single day. It reports false when the
// schedule does not touch the day or falls outside its business hours.
func (b *Builder) projectOne(s Schedule, w window, viewerID string) (Event, bool) {
	if !s.End.After(w.dayStart) || !s.Start.Before(w.dayEnd) {
		return Event{}, false
	}

	eventStart := latest(s.Start, w.displayStart)
	eventEnd := earliest(s.End, w.displayEnd)
	if !eventEnd.After(eventStart) {
		return Event{}, false
	}

	startMinutes := minutesBetween(w.displayStart, eventStart)
	endMinutes := minutesBetween(w.displayStart, eventEnd)

	owner := ""
	if s.Owner != nil {
		owner = s.Owner.Name
	}

	var location *string
	if s.Location != "" {
		l := s.Location
		location = &l
	}

	var room *string
	if s.RoomName != nil {
		r := *s.RoomName
		room = &r
	}

	participants := make([]string, 0, len(s.Participants))
	for _, p := range s.Participants {
		participants = append(participants, p.Name)
	}

	loc := w.dayStart.Location()
	return Event{
		ID:              s.ID,
		Title:           s.Title,
		Location:        location,
		Room:            room,
		StartMinutes:    startMinutes,
		EndMinutes:      endMinutes,
		DurationMinutes: max(endMinutes-startMinutes, minEventMinutes),
		StartTime:       s.Start.In(loc),
		EndTime:         s.End.In(loc),
		DisplayStart:    eventStart.In(loc),
		DisplayEnd:      eventEnd.In(loc),
		Owner:           owner,
		Column:          0,
		ColumnSpan:      1,
		ColumnOffset:    0,
		IsOwner:         s.IsOwnedBy(viewerID),
		Participants:    participants,
		AriaLabel:       b.labels.EventLabel(s.Title, w.dayStart, eventStart.In(loc), eventEnd.In(loc), s.Location),
	}, true
}

// minutesBetween truncates the elapsed time to whole minutes.
func minutesBetween(from, to time.Time) int {
	return int(to.Sub(from) / time.Minute)
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
