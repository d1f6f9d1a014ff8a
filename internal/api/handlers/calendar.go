package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/api/middleware"
	"github.com/team-calendar/backend/internal/calendar"
	"github.com/team-calendar/backend/internal/planner"
	"github.com/team-calendar/backend/internal/storage"
	"github.com/team-calendar/backend/internal/websocket"
)

// maxCalendarBytes bounds uploaded iCalendar bodies.
const maxCalendarBytes = 4 << 20

// ImportURLRequest asks the server to fetch a remote feed.
type ImportURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// ExportCalendar writes the viewer's schedules for one week as an
// iCalendar file.
func ExportCalendar(schedules *storage.ScheduleRepository, loc *time.Location, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middleware.CurrentUser(r.Context())

		reference, err := parseWeek(r.URL.Query().Get("week"), loc, time.Now())
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, err.Error())
			return
		}
		from, to := planner.NewBuilder(planner.DefaultSettings(), planner.WithLocation(loc)).WeekRange(reference)

		list, err := schedules.ListVisible(r.Context(), viewer.ID, from, to)
		if err != nil {
			logger.Error("listing schedules for export", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query schedules")
			return
		}

		body := calendar.Export(viewer.Username, list, time.Now())
		filename := fmt.Sprintf("team-calendar-%s.ics", from.Format("2006-01-02"))

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, body)
	}
}

// ImportCalendar creates schedules owned by the viewer from an uploaded
// text/calendar body, or from a JSON {"url": ...} feed reference.
func ImportCalendar(importer *calendar.Importer, events *websocket.EventBroadcaster, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		viewer := middleware.CurrentUser(ctx)

		var (
			summary *calendar.ImportSummary
			err     error
		)

		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "application/json" {
			var req ImportURLRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			summary, err = importer.ImportURL(ctx, viewer.ID, req.URL)
		} else {
			summary, err = importer.Import(ctx, viewer.ID, http.MaxBytesReader(w, r.Body, maxCalendarBytes))
		}

		if err != nil {
			switch {
			case errors.Is(err, calendar.ErrEmptyCalendar):
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Calendar body is empty")
			case summary == nil:
				logger.Warn("calendar import rejected", zap.Error(err))
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Could not read calendar: "+err.Error())
			default:
				logger.Error("storing imported schedules", zap.Error(err))
				middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to store imported schedules")
			}
			return
		}

		for _, s := range summary.Schedules {
			events.BroadcastScheduleChanged(websocket.TypeScheduleCreated, s)
		}
		writeJSON(w, http.StatusCreated, summary)
	}
}
