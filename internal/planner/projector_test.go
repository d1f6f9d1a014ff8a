package planner

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// monday is the first day of the week used throughout these tests.
var monday = time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return monday.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func strptr(s string) *string { return &s }

func TestProjectClipsToDisplayWindow(t *testing.T) {
	b := NewBuilder(DefaultSettings())
	days := b.Project([]Schedule{
		{ID: "late", Title: "Long day", Start: at(0, 9, 0), End: at(0, 23, 0)},
	}, monday, "viewer")

	if len(days[0]) != 1 {
		t.Fatalf("monday events = %d, want 1", len(days[0]))
	}
	ev := days[0][0]
	if ev.StartMinutes != 180 || ev.EndMinutes != 960 {
		t.Errorf("minutes = %d-%d, want 180-960", ev.StartMinutes, ev.EndMinutes)
	}
	if ev.DurationMinutes != 780 {
		t.Errorf("DurationMinutes = %d, want 780", ev.DurationMinutes)
	}
	if !ev.DisplayEnd.Equal(at(0, 22, 0)) {
		t.Errorf("DisplayEnd = %v, want 22:00", ev.DisplayEnd)
	}
	if !ev.EndTime.Equal(at(0, 23, 0)) {
		t.Errorf("EndTime = %v, want the unclipped 23:00", ev.EndTime)
	}
}

func TestProjectMinimumDuration(t *testing.T) {
	b := NewBuilder(DefaultSettings())
	days := b.Project([]Schedule{
		{ID: "short", Title: "Stand-up", Start: at(1, 10, 0), End: at(1, 10, 5)},
	}, monday, "viewer")

	ev := days[1][0]
	if ev.EndMinutes-ev.StartMinutes != 5 {
		t.Errorf("span = %d, want 5", ev.EndMinutes-ev.StartMinutes)
	}
	if ev.DurationMinutes != 15 {
		t.Errorf("DurationMinutes = %d, want 15", ev.DurationMinutes)
	}
}

func TestProjectSpansMultipleDays(t *testing.T) {
	b := NewBuilder(DefaultSettings())
	days := b.Project([]Schedule{
		{ID: "overnight", Title: "Deploy", Start: at(0, 20, 0), End: at(1, 8, 0)},
	}, monday, "viewer")

	if len(days[0]) != 1 || days[0][0].StartMinutes != 840 || days[0][0].EndMinutes != 960 {
		t.Errorf("monday = %+v, want one event 840-960", days[0])
	}
	if len(days[1]) != 1 || days[1][0].StartMinutes != 0 || days[1][0].EndMinutes != 120 {
		t.Errorf("tuesday = %+v, want one event 0-120", days[1])
	}
	for d := 2; d < 7; d++ {
		if len(days[d]) != 0 {
			t.Errorf("day %d has %d events, want none", d, len(days[d]))
		}
	}
}

func TestProjectSkipsOutsideBusinessHours(t *testing.T) {
	b := NewBuilder(DefaultSettings())
	days := b.Project([]Schedule{
		{ID: "night", Title: "Night shift", Start: at(2, 22, 30), End: at(2, 23, 30)},
		{ID: "dawn", Title: "Early run", Start: at(3, 5, 0), End: at(3, 6, 0)},
		{ID: "next-week", Title: "Later", Start: at(8, 9, 0), End: at(8, 10, 0)},
	}, monday, "viewer")

	for d, events := range days {
		if len(events) != 0 {
			t.Errorf("day %d has events %+v, want none", d, events)
		}
	}
}

func TestProjectTruncatesToMinutes(t *testing.T) {
	b := NewBuilder(DefaultSettings())
	start := at(0, 9, 0).Add(59 * time.Second)
	days := b.Project([]Schedule{
		{ID: "odd", Title: "Odd", Start: start, End: at(0, 9, 30).Add(59 * time.Second)},
	}, monday, "viewer")

	ev := days[0][0]
	if ev.StartMinutes != 180 || ev.EndMinutes != 210 {
		t.Errorf("minutes = %d-%d, want 180-210", ev.StartMinutes, ev.EndMinutes)
	}
}

func TestProjectPopulatesPeopleAndLabels(t *testing.T) {
	b := NewBuilder(DefaultSettings())
	days := b.Project([]Schedule{
		{
			ID:           "sync",
			Title:        "Team Sync",
			Start:        at(2, 9, 0),
			End:          at(2, 10, 30),
			Location:     "War Room",
			RoomName:     strptr("Conference B"),
			Owner:        &Person{ID: "owner", Name: "alice"},
			Participants: []Person{{ID: "p1", Name: "bob"}, {ID: "p2", Name: "carol"}},
		},
		{ID: "orphan", Title: "Orphan", Start: at(2, 12, 0), End: at(2, 13, 0)},
	}, monday, "owner")

	sync, orphan := days[2][0], days[2][1]

	if !sync.IsOwner || sync.Owner != "alice" {
		t.Errorf("owner = %q (is_owner %v), want alice/true", sync.Owner, sync.IsOwner)
	}
	if sync.Room == nil || *sync.Room != "Conference B" {
		t.Errorf("Room = %v, want Conference B", sync.Room)
	}
	if len(sync.Participants) != 2 || sync.Participants[0] != "bob" || sync.Participants[1] != "carol" {
		t.Errorf("Participants = %v, want [bob carol]", sync.Participants)
	}
	wantLabel := "Team Sync, on Wednesday 15 May 2024, from 09:00 to 10:30, at War Room"
	if sync.AriaLabel != wantLabel {
		t.Errorf("AriaLabel = %q, want %q", sync.AriaLabel, wantLabel)
	}

	if orphan.IsOwner || orphan.Owner != "" || orphan.Room != nil || orphan.Location != nil {
		t.Errorf("orphan = %+v, want empty owner, nil room and location", orphan)
	}
	if orphan.AriaLabel != "Orphan, on Wednesday 15 May 2024, from 12:00 to 13:00" {
		t.Errorf("orphan AriaLabel = %q", orphan.AriaLabel)
	}
	if orphan.Participants == nil {
		t.Error("Participants should be an empty list, not nil")
	}
	if orphan.Column != 0 || orphan.ColumnSpan != 1 || orphan.ColumnOffset != 0 {
		t.Errorf("column defaults = %d/%d/%d, want 0/1/0", orphan.Column, orphan.ColumnSpan, orphan.ColumnOffset)
	}
}

func TestProjectFlagsInvertedSchedules(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	b := NewBuilder(DefaultSettings(), WithLogger(zap.New(core)))

	days := b.Project([]Schedule{
		{ID: "broken", Title: "Broken", Start: at(0, 11, 0), End: at(0, 10, 0)},
	}, monday, "viewer")

	if len(days[0]) != 0 {
		t.Errorf("monday = %+v, want no events", days[0])
	}
	if logs.FilterMessage("schedule ends before it starts").Len() != 1 {
		t.Errorf("expected one data-integrity warning, got %v", logs.All())
	}
}

func TestProjectUsesReferenceLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	b := NewBuilder(DefaultSettings(), WithLocation(tokyo))

	// 00:00 UTC is 09:00 in Tokyo.
	weekStart := time.Date(2024, time.May, 13, 0, 0, 0, 0, tokyo)
	days := b.Project([]Schedule{
		{ID: "utc", Title: "UTC", Start: time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC), End: time.Date(2024, time.May, 13, 1, 0, 0, 0, time.UTC)},
	}, weekStart, "viewer")

	if len(days[0]) != 1 || days[0][0].StartMinutes != 180 {
		t.Fatalf("monday = %+v, want one event at minute 180", days[0])
	}
	if days[0][0].DisplayStart.Location() != tokyo {
		t.Errorf("DisplayStart location = %v, want JST", days[0][0].DisplayStart.Location())
	}
}
