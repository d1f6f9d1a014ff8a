package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/api/middleware"
	"github.com/team-calendar/backend/internal/i18n"
	"github.com/team-calendar/backend/internal/planner"
	"github.com/team-calendar/backend/internal/storage"
	"github.com/team-calendar/backend/internal/storage/models"
)

// PlannerDeps groups what the weekly planner handler needs.
type PlannerDeps struct {
	Schedules  *storage.ScheduleRepository
	Settings   *storage.SettingsRepository
	Defaults   planner.Settings
	Translator *i18n.Translator
	Location   *time.Location
	Logger     *zap.Logger
	Now        func() time.Time
}

// scheduleSource adapts the schedule repository to the planner.
func scheduleSource(repo *storage.ScheduleRepository) planner.ScheduleSource {
	return func(ctx context.Context, viewerID string, from, to time.Time) ([]planner.Schedule, error) {
		details, err := repo.ListVisible(ctx, viewerID, from, to)
		if err != nil {
			return nil, err
		}
		out := make([]planner.Schedule, len(details))
		for i, d := range details {
			out[i] = toPlannerSchedule(d)
		}
		return out, nil
	}
}

func toPlannerSchedule(d models.ScheduleDetail) planner.Schedule {
	s := planner.Schedule{
		ID:           d.ID,
		Title:        d.Title,
		Start:        d.StartTime,
		End:          d.EndTime,
		Location:     d.Location,
		RoomName:     d.RoomName,
		Owner:        &planner.Person{ID: d.OwnerID, Name: d.OwnerName},
		Participants: make([]planner.Person, len(d.Participants)),
	}
	for i, p := range d.Participants {
		s.Participants[i] = planner.Person{ID: p.ID, Name: p.Username}
	}
	return s
}

// GetPlanner returns the weekly planner for the week containing the
// optional week=YYYY-MM-DD parameter, labelled in the caller's language.
func GetPlanner(d PlannerDeps) http.HandlerFunc {
	now := d.Now
	if now == nil {
		now = time.Now
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		viewer := middleware.CurrentUser(ctx)

		reference, err := parseWeek(r.URL.Query().Get("week"), d.Location, now())
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, err.Error())
			return
		}

		settings, err := d.Settings.GetPlanner(ctx, d.Defaults)
		if err != nil {
			d.Logger.Error("loading planner settings", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load planner settings")
			return
		}

		b := planner.NewBuilder(settings,
			planner.WithLocation(d.Location),
			planner.WithLabeler(d.Translator.Localizer(r.Header.Get("Accept-Language"))),
			planner.WithLogger(d.Logger),
		)

		p, err := b.BuildFor(ctx, scheduleSource(d.Schedules), reference, viewer.ID)
		if errors.Is(err, planner.ErrConfiguration) {
			d.Logger.Error("planner misconfigured", zap.Any("settings", settings), zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Planner is misconfigured")
			return
		}
		if err != nil {
			d.Logger.Error("building planner", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to build planner")
			return
		}

		writeJSON(w, http.StatusOK, p)
	}
}
