package planner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Builder assembles planners for a fixed settings window.
type Builder struct {
	settings Settings
	location *time.Location
	labels   Labeler
	logger   *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLocation sets the reference clock used for day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		if loc != nil {
			b.location = loc
		}
	}
}

// WithLabeler replaces the English labels.
func WithLabeler(l Labeler) Option {
	return func(b *Builder) {
		if l != nil {
			b.labels = l
		}
	}
}

// WithLogger sets the logger used to flag inconsistent schedule data.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a planner builder. Settings are validated when a
// planner is built, not here.
func NewBuilder(settings Settings, opts ...Option) *Builder {
	b := &Builder{
		settings: settings,
		location: time.UTC,
		labels:   EnglishLabels{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Settings returns the builder's business-hour window.
func (b *Builder) Settings() Settings {
	return b.settings
}

// Location returns the builder's reference clock.
func (b *Builder) Location() *time.Location {
	return b.location
}

// WeekStart returns local midnight of the Monday on or before reference.
func WeekStart(reference time.Time) time.Time {
	offset := (int(reference.Weekday()) + 6) % 7
	y, m, d := reference.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, reference.Location())
}

// WeekRange returns the [start, end) bounds of the week containing
// reference, evaluated in the builder's location.
func (b *Builder) WeekRange(reference time.Time) (time.Time, time.Time) {
	start := WeekStart(reference.In(b.location))
	return start, start.AddDate(0, 0, daysPerWeek)
}

// normalizeWeekStart truncates weekStart to midnight in the builder's
// location without moving it to a Monday.
func (b *Builder) normalizeWeekStart(weekStart time.Time) time.Time {
	y, m, d := weekStart.In(b.location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, b.location)
}

// Build lays out schedules over the week starting at weekStart for the
// given viewer. It fails only with ErrConfiguration.
func (b *Builder) Build(schedules []Schedule, weekStart time.Time, viewerID string) (*Planner, error) {
	hours, err := b.settings.Hours()
	if err != nil {
		return nil, err
	}

	weekStart = b.normalizeWeekStart(weekStart)
	projected := b.Project(schedules, weekStart, viewerID)
	displayHours := b.settings.EndHour - b.settings.StartHour

	days := make([]Day, 0, daysPerWeek)
	for dayIndex, events := range projected {
		w := b.dayWindow(weekStart, dayIndex)
		AssignColumns(events)

		cellLabels := make([]string, 0, len(hours))
		for _, h := range hours {
			cellLabels = append(cellLabels, b.labels.CellLabel(w.dayStart, h))
		}

		days = append(days, Day{
			Date:         w.dayStart,
			Label:        b.labels.DayLabel(w.dayStart),
			CellLabels:   cellLabels,
			Events:       events,
			DisplayStart: w.displayStart,
			DisplayHours: displayHours,
		})
	}

	return &Planner{
		WeekStart: weekStart,
		Hours:     hours,
		Days:      days,
		StartHour: b.settings.StartHour,
		EndHour:   b.settings.EndHour,
	}, nil
}

// BuildFor fetches the viewer's schedules for the week containing
// reference and builds the planner. The hour scale is checked before any
// schedule is fetched.
func (b *Builder) BuildFor(ctx context.Context, source ScheduleSource, reference time.Time, viewerID string) (*Planner, error) {
	if _, err := b.settings.Hours(); err != nil {
		return nil, err
	}

	from, to := b.WeekRange(reference)
	schedules, err := source(ctx, viewerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetching schedules: %w", err)
	}
	return b.Build(schedules, from, viewerID)
}
