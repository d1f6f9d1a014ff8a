package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/team-calendar/backend/internal/planner"
	"github.com/team-calendar/backend/internal/storage/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

func createUser(t *testing.T, repo *UserRepository, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "hash"}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("creating %s: %v", username, err)
	}
	return u
}

var week = time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC)

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := RunMigrations(db, zap.NewNop()); err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	alice := createUser(t, repo, "alice")
	bob := createUser(t, repo, "bob")

	if err := repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "x"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate Create() error = %v, want ErrConflict", err)
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil || got == nil || got.ID != alice.ID {
		t.Fatalf("GetByUsername() = %v, %v", got, err)
	}

	missing, err := repo.GetByID(ctx, "nobody")
	if err != nil || missing != nil {
		t.Errorf("GetByID(unknown) = %v, %v, want nil, nil", missing, err)
	}

	users, err := repo.ListByIDs(ctx, []string{bob.ID, "unknown"})
	if err != nil || len(users) != 1 || users[0].Username != "bob" {
		t.Errorf("ListByIDs() = %v, %v", users, err)
	}

	all, err := repo.List(ctx)
	if err != nil || len(all) != 2 || all[0].Username != "alice" {
		t.Errorf("List() = %v, %v", all, err)
	}
}

func TestRoomRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	rooms := NewRoomRepository(db)
	schedules := NewScheduleRepository(db)
	owner := createUser(t, NewUserRepository(db), "alice")

	b := &models.Room{Name: "Beta", Capacity: 4}
	a := &models.Room{Name: "Alpha", Capacity: 10}
	for _, r := range []*models.Room{b, a} {
		if err := rooms.Create(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	if err := rooms.Create(ctx, &models.Room{Name: "Alpha", Capacity: 2}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate Create() error = %v, want ErrConflict", err)
	}

	list, err := rooms.List(ctx)
	if err != nil || len(list) != 2 || list[0].Name != "Alpha" {
		t.Errorf("List() = %v, %v, want Alpha first", list, err)
	}

	b.Name = "Alpha"
	if err := rooms.Update(ctx, b); !errors.Is(err, ErrConflict) {
		t.Errorf("Update() to taken name error = %v, want ErrConflict", err)
	}
	if err := rooms.Update(ctx, &models.Room{ID: "missing", Name: "X", Capacity: 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(unknown) error = %v, want ErrNotFound", err)
	}

	if err := schedules.Create(ctx, &models.Schedule{
		Title: "Review", StartTime: week.Add(9 * time.Hour), EndTime: week.Add(10 * time.Hour),
		RoomID: &a.ID, OwnerID: owner.ID,
	}); err != nil {
		t.Fatal(err)
	}

	count, err := rooms.CountSchedules(ctx, a.ID)
	if err != nil || count != 1 {
		t.Errorf("CountSchedules() = %d, %v, want 1", count, err)
	}
	if err := rooms.Delete(ctx, a.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("Delete(in use) error = %v, want ErrConflict", err)
	}
	if err := rooms.Delete(ctx, b.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := rooms.Delete(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestScheduleRepositoryVisibility(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	schedules := NewScheduleRepository(db)
	rooms := NewRoomRepository(db)

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	carol := createUser(t, users, "carol")

	room := &models.Room{Name: "War Room", Capacity: 8}
	if err := rooms.Create(ctx, room); err != nil {
		t.Fatal(err)
	}

	create := func(title string, owner *models.User, start, end time.Time, roomID *string, participants ...string) *models.Schedule {
		t.Helper()
		s := &models.Schedule{
			Title: title, StartTime: start, EndTime: end, RoomID: roomID,
			OwnerID: owner.ID, ParticipantIDs: participants,
		}
		if err := schedules.Create(ctx, s); err != nil {
			t.Fatalf("creating %s: %v", title, err)
		}
		return s
	}

	shared := create("Shared", alice, week.Add(33*time.Hour), week.Add(34*time.Hour), &room.ID, bob.ID)
	create("Private", alice, week.Add(10*time.Hour), week.Add(11*time.Hour), nil)
	create("Carol only", carol, week.Add(12*time.Hour), week.Add(13*time.Hour), nil)
	create("Straddles start", bob, week.Add(-2*time.Hour), week.Add(time.Hour), nil)
	create("Next week", bob, week.AddDate(0, 0, 7), week.AddDate(0, 0, 7).Add(time.Hour), nil)

	got, err := schedules.ListVisible(ctx, bob.ID, week, week.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("ListVisible() error = %v", err)
	}
	if len(got) != 2 || got[0].Title != "Straddles start" || got[1].Title != "Shared" {
		t.Fatalf("ListVisible(bob) = %+v, want [Straddles start, Shared]", got)
	}

	detail := got[1]
	if detail.OwnerName != "alice" || detail.RoomName == nil || *detail.RoomName != "War Room" {
		t.Errorf("detail = %+v", detail)
	}
	if len(detail.Participants) != 1 || detail.Participants[0].Username != "bob" {
		t.Errorf("Participants = %+v, want [bob]", detail.Participants)
	}
	if !detail.StartTime.Equal(shared.StartTime) {
		t.Errorf("StartTime = %v, want %v", detail.StartTime, shared.StartTime)
	}

	aliceView, err := schedules.ListVisible(ctx, alice.ID, week, week.AddDate(0, 0, 7))
	if err != nil || len(aliceView) != 2 || aliceView[0].Title != "Private" {
		t.Errorf("ListVisible(alice) = %+v, %v", aliceView, err)
	}

	next := create("Back to back", carol, week.Add(34*time.Hour), week.Add(35*time.Hour), &room.ID)

	bookings, err := schedules.ListRoomBookings(ctx, room.ID, week.Add(33*time.Hour+30*time.Minute), week.Add(35*time.Hour), "")
	if err != nil || len(bookings) != 2 || bookings[0].ID != shared.ID || bookings[1].ID != next.ID {
		t.Errorf("ListRoomBookings() = %+v, %v", bookings, err)
	}
	bookings, err = schedules.ListRoomBookings(ctx, room.ID, next.StartTime, next.EndTime, next.ID)
	if err != nil || len(bookings) != 0 {
		t.Errorf("adjacent booking should not overlap, got %+v, %v", bookings, err)
	}
}

func TestScheduleRepositoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	schedules := NewScheduleRepository(db)

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	carol := createUser(t, users, "carol")

	s := &models.Schedule{
		Title: "Planning", StartTime: week.Add(9 * time.Hour), EndTime: week.Add(10 * time.Hour),
		OwnerID: alice.ID, ParticipantIDs: []string{bob.ID},
	}
	if err := schedules.Create(ctx, s); err != nil {
		t.Fatal(err)
	}

	s.Title = "Planning (moved)"
	s.Location = "Cafe"
	s.ParticipantIDs = []string{carol.ID}
	if err := schedules.Update(ctx, s); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := schedules.GetByID(ctx, s.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID() = %v, %v", got, err)
	}
	if got.Title != "Planning (moved)" || got.Location != "Cafe" || got.RoomName != nil {
		t.Errorf("got = %+v", got)
	}
	if len(got.ParticipantIDs) != 1 || got.ParticipantIDs[0] != carol.ID {
		t.Errorf("ParticipantIDs = %v, want [carol]", got.ParticipantIDs)
	}

	if err := schedules.Update(ctx, &models.Schedule{ID: "missing", Title: "x", StartTime: week, EndTime: week.Add(time.Hour)}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(unknown) error = %v, want ErrNotFound", err)
	}

	if err := schedules.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := schedules.GetByID(ctx, s.ID); got != nil {
		t.Errorf("GetByID() after delete = %+v", got)
	}
	if err := schedules.Delete(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	alice := createUser(t, NewUserRepository(db), "alice")
	sessions := NewSessionRepository(db)

	now := time.Now()
	live := &models.Session{TokenHash: "live", UserID: alice.ID, ExpiresAt: now.Add(time.Hour)}
	stale := &models.Session{TokenHash: "stale", UserID: alice.ID, ExpiresAt: now.Add(-time.Hour)}
	for _, s := range []*models.Session{live, stale} {
		if err := sessions.Save(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	got, err := sessions.Lookup(ctx, "live")
	if err != nil || got == nil || got.UserID != alice.ID {
		t.Fatalf("Lookup() = %v, %v", got, err)
	}

	n, err := sessions.DeleteExpired(ctx, now)
	if err != nil || n != 1 {
		t.Errorf("DeleteExpired() = %d, %v, want 1", n, err)
	}
	if got, _ := sessions.Lookup(ctx, "stale"); got != nil {
		t.Error("stale session survived pruning")
	}

	if err := sessions.Delete(ctx, "live"); err != nil {
		t.Fatal(err)
	}
	if got, _ := sessions.Lookup(ctx, "live"); got != nil {
		t.Error("session survived Delete")
	}
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(newTestDB(t))

	got, err := repo.GetPlanner(ctx, planner.DefaultSettings())
	if err != nil || got != planner.DefaultSettings() {
		t.Fatalf("GetPlanner() = %+v, %v, want defaults", got, err)
	}

	want := planner.Settings{StartHour: 8, EndHour: 18, IntervalMinutes: 120}
	if err := repo.SetPlanner(ctx, want); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetPlanner(ctx, want); err != nil {
		t.Fatalf("second SetPlanner() error = %v", err)
	}

	got, err = repo.GetPlanner(ctx, planner.DefaultSettings())
	if err != nil || got != want {
		t.Errorf("GetPlanner() = %+v, %v, want %+v", got, err, want)
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	rooms := NewRoomRepository(db)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	body := `
users:
  - username: alice
    password: secret1
rooms:
  - name: War Room
    capacity: 8
  - name: Focus Booth
    capacity: 1
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}

	hash := func(p string) (string, error) { return "hashed:" + p, nil }
	for i := 0; i < 2; i++ {
		if err := seed.Apply(ctx, users, rooms, hash, zap.NewNop()); err != nil {
			t.Fatalf("Apply() #%d error = %v", i+1, err)
		}
	}

	alice, err := users.GetByUsername(ctx, "alice")
	if err != nil || alice == nil || alice.PasswordHash != "hashed:secret1" {
		t.Errorf("alice = %+v, %v", alice, err)
	}
	list, err := rooms.List(ctx)
	if err != nil || len(list) != 2 {
		t.Errorf("rooms = %+v, %v, want 2", list, err)
	}
}

func TestLoadSeedRejectsInvalidRooms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte("rooms:\n  - name: Closet\n    capacity: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSeed(path); err == nil {
		t.Error("LoadSeed() should reject a room with no capacity")
	}
}

func TestTranslateErrorMapsConstraints(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	owner := createUser(t, users, "owner")

	room := &models.Room{Name: "War Room", Capacity: 8}
	if err := NewRoomRepository(db).Create(ctx, room); err != nil {
		t.Fatal(err)
	}
	if err := NewScheduleRepository(db).Create(ctx, &models.Schedule{
		Title: "Review", StartTime: week, EndTime: week.Add(time.Hour),
		RoomID: &room.ID, OwnerID: owner.ID,
	}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		query string
		args  []any
	}{
		{"restricted delete", "DELETE FROM rooms WHERE id = ?", []any{room.ID}},
		{"duplicate name", "INSERT INTO rooms (id, name, capacity, created_at, updated_at) VALUES ('r2', ?, 1, ?, ?)", []any{room.Name, week, week}},
		{"unknown owner", "INSERT INTO schedules (id, title, start_time, end_time, owner_id, created_at, updated_at) VALUES ('s2', 'x', ?, ?, 'nobody', ?, ?)", []any{week, week.Add(time.Hour), week, week}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.ExecContext(ctx, tt.query, tt.args...)
			if err == nil {
				t.Fatal("statement should violate a constraint")
			}
			if got := translateError(err); !errors.Is(got, ErrConflict) {
				t.Errorf("translateError(%v) = %v, want ErrConflict", err, got)
			}
		})
	}

	if err := translateError(errors.New("disk I/O error")); errors.Is(err, ErrConflict) {
		t.Error("non-sqlite errors must pass through unchanged")
	}
}
