// Package calendar provides iCalendar interchange and background maintenance.
package calendar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/storage/models"
)

const (
	productID    = "-//team-calendar//planner//EN"
	uidDomain    = "team-calendar"
	maxFeedBytes = 4 << 20
	// maxTitleLength matches the schedule title limit of the API.
	maxTitleLength = 140
	untitled       = "Untitled"
)

// ErrEmptyCalendar is returned when an import body contains no data.
var ErrEmptyCalendar = errors.New("empty calendar body")

// Event is a VEVENT read from an iCalendar feed.
type Event struct {
	UID      string
	Title    string
	Location string
	Start    time.Time
	End      time.Time
}

// ParseResult holds the usable events of a feed and how many were skipped.
type ParseResult struct {
	Events  []Event
	Skipped int
}

// Parser reads iCalendar data. Floating times, which carry neither a UTC
// marker nor a TZID, are read in the parser's location.
type Parser struct {
	httpClient *http.Client
	location   *time.Location
	logger     *zap.Logger
}

// NewParser creates a new iCalendar parser.
func NewParser(loc *time.Location, logger *zap.Logger) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		location: loc,
		logger:   logger,
	}
}

// FetchAndParse downloads and parses an iCalendar feed from a URL.
func (p *Parser) FetchAndParse(ctx context.Context, url string) (*ParseResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building calendar request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar returned status %d", resp.StatusCode)
	}

	return p.Parse(resp.Body)
}

// Parse reads an iCalendar document. Events without a start or end, or
// whose end is not after the start, are skipped and counted.
func (p *Parser) Parse(r io.Reader) (*ParseResult, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyCalendar
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	result := &ParseResult{Events: []Event{}}
	for _, ve := range cal.Events() {
		ev, err := p.parseEvent(ve)
		if err != nil {
			p.logger.Debug("skipping vevent", zap.String("uid", ve.Id()), zap.Error(err))
			result.Skipped++
			continue
		}
		result.Events = append(result.Events, ev)
	}

	return result, nil
}

func (p *Parser) parseEvent(ve *ical.VEvent) (Event, error) {
	ev := Event{UID: ve.Id()}

	if prop := ve.GetProperty(ical.ComponentPropertySummary); prop != nil {
		ev.Title = strings.TrimSpace(prop.Value)
	}
	if ev.Title == "" {
		ev.Title = untitled
	}
	if r := []rune(ev.Title); len(r) > maxTitleLength {
		ev.Title = string(r[:maxTitleLength])
	}
	if prop := ve.GetProperty(ical.ComponentPropertyLocation); prop != nil {
		ev.Location = strings.TrimSpace(prop.Value)
	}

	start, err := p.timeOf(ve, ical.ComponentPropertyDtStart)
	if err != nil {
		return ev, fmt.Errorf("start: %w", err)
	}
	end, err := p.timeOf(ve, ical.ComponentPropertyDtEnd)
	if err != nil {
		return ev, fmt.Errorf("end: %w", err)
	}
	if !end.After(start) {
		return ev, errors.New("end is not after start")
	}

	ev.Start = start
	ev.End = end
	return ev, nil
}

// timeOf reads a DTSTART or DTEND property.
func (p *Parser) timeOf(ve *ical.VEvent, property ical.ComponentProperty) (time.Time, error) {
	prop := ve.GetProperty(property)
	if prop == nil || strings.TrimSpace(prop.Value) == "" {
		return time.Time{}, errors.New("missing")
	}

	value := strings.TrimSpace(prop.Value)
	_, hasTZID := prop.ICalParameters["TZID"]
	if !hasTZID && !strings.HasSuffix(value, "Z") {
		for _, layout := range []string{"20060102T150405", "20060102"} {
			if t, err := time.ParseInLocation(layout, value, p.location); err == nil {
				return t, nil
			}
		}
	}

	var t time.Time
	var err error
	if property == ical.ComponentPropertyDtStart {
		t, err = ve.GetStartAt()
	} else {
		t, err = ve.GetEndAt()
	}
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Export renders schedules as an iCalendar document.
func Export(name string, schedules []models.ScheduleDetail, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(name)

	for _, s := range schedules {
		ev := cal.AddEvent(s.ID + "@" + uidDomain)
		ev.SetDtStampTime(now)
		ev.SetCreatedTime(s.CreatedAt)
		ev.SetModifiedAt(s.UpdatedAt)
		ev.SetStartAt(s.StartTime)
		ev.SetEndAt(s.EndTime)
		ev.SetSummary(s.Title)

		location := s.Location
		if location == "" && s.RoomName != nil {
			location = *s.RoomName
		}
		if location != "" {
			ev.SetLocation(location)
		}

		ev.SetDescription(describe(s))
	}

	return cal.Serialize()
}

func describe(s models.ScheduleDetail) string {
	lines := []string{"Owner: " + s.OwnerName}
	if s.RoomName != nil {
		lines = append(lines, "Room: "+*s.RoomName)
	}
	if len(s.Participants) > 0 {
		names := make([]string, len(s.Participants))
		for i, p := range s.Participants {
			names[i] = p.Username
		}
		lines = append(lines, "Participants: "+strings.Join(names, ", "))
	}
	return strings.Join(lines, "\n")
}
