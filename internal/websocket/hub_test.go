package websocket

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/storage/models"
)

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.Send():
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decoding message: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send():
		t.Fatalf("unexpected message %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubTargetsAudience(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	alice := NewClient(hub, "alice")
	bob := NewClient(hub, "bob")
	carol := NewClient(hub, "carol")
	for _, c := range []*Client{alice, bob, carol} {
		if !hub.Register(c) {
			t.Fatal("Register() on a running hub returned false")
		}
	}

	events := NewEventBroadcaster(hub, time.UTC, zap.NewNop())
	events.BroadcastScheduleChanged(TypeScheduleCreated, &models.Schedule{
		ID:             "s1",
		Title:          "Deploy",
		OwnerID:        "alice",
		ParticipantIDs: []string{"bob"},
		StartTime:      time.Date(2024, time.May, 19, 23, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2024, time.May, 20, 1, 0, 0, 0, time.UTC),
	})

	for _, c := range []*Client{alice, bob} {
		msg := receive(t, c)
		if msg.Type != TypeScheduleCreated {
			t.Errorf("%s got %s, want %s", c.UserID(), msg.Type, TypeScheduleCreated)
		}
		payload := msg.Payload.(map[string]any)
		weeks := payload["week_starts"].([]any)
		if !reflect.DeepEqual(weeks, []any{"2024-05-13", "2024-05-20"}) {
			t.Errorf("week_starts = %v", weeks)
		}
	}
	expectNothing(t, carol)

	events.BroadcastRoomChanged(TypeRoomDeleted, &models.Room{ID: "r1", Name: "War Room"})
	for _, c := range []*Client{alice, bob, carol} {
		if msg := receive(t, c); msg.Type != TypeRoomDeleted {
			t.Errorf("%s got %s, want %s", c.UserID(), msg.Type, TypeRoomDeleted)
		}
	}

	hub.Unregister(carol)
	if _, ok := <-carol.Send(); ok {
		t.Error("send channel should be closed after Unregister")
	}
	if n := hub.ClientCount(); n != 2 {
		t.Errorf("ClientCount() = %d, want 2", n)
	}
}

func TestHubStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zap.NewNop())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := NewClient(hub, "alice")
	hub.Register(client)
	cancel()
	<-stopped

	if _, ok := <-client.Send(); ok {
		t.Error("client channel should be closed when the hub stops")
	}
	if hub.Register(NewClient(hub, "bob")) {
		t.Error("Register() after stop should return false")
	}
	hub.Unregister(client)
}

func TestWeekStarts(t *testing.T) {
	start := time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC)

	if got := weekStarts(start, start.Add(time.Hour)); !reflect.DeepEqual(got, []string{"2024-05-13"}) {
		t.Errorf("weekStarts(one hour) = %v", got)
	}
	if got := weekStarts(start, start); len(got) != 0 {
		t.Errorf("weekStarts(empty) = %v, want none", got)
	}
}
