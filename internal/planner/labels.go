package planner

import (
	"strings"
	"time"
)

// Labeler renders the human readable strings of the planner.
type Labeler interface {
	// DayLabel is the short column heading, e.g. "Monday 02 Jan".
	DayLabel(day time.Time) string
	// CellLabel describes one hour slot of a day.
	CellLabel(day time.Time, hour HourLabel) string
	// EventLabel describes a clipped event for assistive technology.
	EventLabel(title string, day, start, end time.Time, location string) string
}

// EnglishLabels is the default Labeler.
type EnglishLabels struct{}

const (
	shortDayLayout = "Monday 02 Jan"
	longDayLayout  = "Monday 02 January 2006"
	clockLayout    = "15:04"
)

func (EnglishLabels) DayLabel(day time.Time) string {
	return day.Format(shortDayLayout)
}

func (EnglishLabels) CellLabel(day time.Time, hour HourLabel) string {
	return day.Format(longDayLayout) + " at " + hour.Label
}

func (EnglishLabels) EventLabel(title string, day, start, end time.Time, location string) string {
	parts := []string{
		title,
		"on " + day.Format(longDayLayout),
		"from " + start.Format(clockLayout) + " to " + end.Format(clockLayout),
	}
	if location != "" {
		parts = append(parts, "at "+location)
	}
	return strings.Join(parts, ", ")
}
