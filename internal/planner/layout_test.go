package planner

import (
	"math/rand"
	"testing"
)

func event(id string, start, end int) Event {
	return Event{ID: id, StartMinutes: start, EndMinutes: end, ColumnSpan: 1}
}

func byID(events []Event) map[string]Event {
	out := make(map[string]Event, len(events))
	for _, e := range events {
		out[e.ID] = e
	}
	return out
}

func TestAssignColumnsChainedCluster(t *testing.T) {
	// 09:00-10:00, 09:30-10:30 and 10:00-11:00 with a 06:00 window start.
	events := []Event{
		event("C", 240, 300),
		event("B", 210, 270),
		event("A", 180, 240),
	}

	AssignColumns(events)
	got := byID(events)

	want := map[string]int{"A": 0, "B": 1, "C": 0}
	for id, column := range want {
		if got[id].Column != column {
			t.Errorf("%s.Column = %d, want %d", id, got[id].Column, column)
		}
		if got[id].ColumnSpan != 2 {
			t.Errorf("%s.ColumnSpan = %d, want 2", id, got[id].ColumnSpan)
		}
		if got[id].ColumnOffset != got[id].Column {
			t.Errorf("%s.ColumnOffset = %d, want %d", id, got[id].ColumnOffset, got[id].Column)
		}
	}

	if events[0].ID != "A" || events[1].ID != "B" || events[2].ID != "C" {
		t.Errorf("order = %s,%s,%s, want A,B,C", events[0].ID, events[1].ID, events[2].ID)
	}
}

func TestAssignColumnsSeparateClusters(t *testing.T) {
	events := []Event{
		event("morning-1", 0, 60),
		event("morning-2", 30, 90),
		event("morning-3", 45, 120),
		event("afternoon", 300, 360),
	}

	AssignColumns(events)
	got := byID(events)

	if got["afternoon"].Column != 0 || got["afternoon"].ColumnSpan != 1 {
		t.Errorf("afternoon = column %d span %d, want 0/1", got["afternoon"].Column, got["afternoon"].ColumnSpan)
	}
	for _, id := range []string{"morning-1", "morning-2", "morning-3"} {
		if got[id].ColumnSpan != 3 {
			t.Errorf("%s.ColumnSpan = %d, want 3", id, got[id].ColumnSpan)
		}
	}
	if got["morning-3"].Column != 2 {
		t.Errorf("morning-3.Column = %d, want 2", got["morning-3"].Column)
	}
}

func TestAssignColumnsSameStartOrdersByEnd(t *testing.T) {
	events := []Event{
		event("long", 60, 180),
		event("short", 60, 90),
	}

	AssignColumns(events)

	if events[0].ID != "short" {
		t.Fatalf("first event = %s, want short", events[0].ID)
	}
	if events[0].Column != 0 || events[1].Column != 1 {
		t.Errorf("columns = %d,%d, want 0,1", events[0].Column, events[1].Column)
	}
}

func TestAssignColumnsReusesFreedColumn(t *testing.T) {
	// The long event keeps column 0 busy, the two short ones alternate on 1.
	events := []Event{
		event("long", 0, 100),
		event("first", 10, 20),
		event("second", 30, 40),
	}

	AssignColumns(events)
	got := byID(events)

	if got["first"].Column != 1 || got["second"].Column != 1 {
		t.Errorf("short columns = %d,%d, want 1,1", got["first"].Column, got["second"].Column)
	}
	for id, e := range got {
		if e.ColumnSpan != 2 {
			t.Errorf("%s.ColumnSpan = %d, want 2", id, e.ColumnSpan)
		}
	}
}

func TestAssignColumnsEmpty(t *testing.T) {
	AssignColumns(nil)
	AssignColumns([]Event{})
}

func TestAssignColumnsNeverShareOverlapping(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := rng.Intn(12) + 1
		events := make([]Event, n)
		for i := range events {
			start := rng.Intn(900)
			events[i] = event("", start, start+rng.Intn(180)+1)
		}

		AssignColumns(events)

		for i, a := range events {
			if a.Column < 0 || a.Column >= a.ColumnSpan {
				t.Fatalf("round %d: column %d outside span %d", round, a.Column, a.ColumnSpan)
			}
			for j, b := range events {
				if i == j {
					continue
				}
				overlaps := a.StartMinutes < b.EndMinutes && b.StartMinutes < a.EndMinutes
				if overlaps && a.Column == b.Column {
					t.Fatalf("round %d: overlapping events %v and %v share column %d", round, a, b, a.Column)
				}
				if overlaps && a.ColumnSpan != b.ColumnSpan {
					t.Fatalf("round %d: overlapping events in one cluster have spans %d and %d", round, a.ColumnSpan, b.ColumnSpan)
				}
			}
		}
	}
}
