package calendar

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/storage"
	"github.com/team-calendar/backend/internal/storage/models"
)

// ImportSummary reports the outcome of an import.
type ImportSummary struct {
	Created   int                `json:"created"`
	Skipped   int                `json:"skipped"`
	Schedules []*models.Schedule `json:"schedules"`
}

// Importer turns iCalendar events into schedules owned by one user.
type Importer struct {
	parser    *Parser
	schedules *storage.ScheduleRepository
	logger    *zap.Logger
}

// NewImporter creates an importer that stores schedules through repo.
func NewImporter(parser *Parser, repo *storage.ScheduleRepository, logger *zap.Logger) *Importer {
	return &Importer{parser: parser, schedules: repo, logger: logger}
}

// Import parses r and creates one schedule per usable event.
func (i *Importer) Import(ctx context.Context, ownerID string, r io.Reader) (*ImportSummary, error) {
	result, err := i.parser.Parse(r)
	if err != nil {
		return nil, err
	}
	return i.store(ctx, ownerID, result)
}

// ImportURL fetches a feed and imports it like Import.
func (i *Importer) ImportURL(ctx context.Context, ownerID, url string) (*ImportSummary, error) {
	result, err := i.parser.FetchAndParse(ctx, url)
	if err != nil {
		return nil, err
	}
	return i.store(ctx, ownerID, result)
}

func (i *Importer) store(ctx context.Context, ownerID string, result *ParseResult) (*ImportSummary, error) {
	summary := &ImportSummary{Skipped: result.Skipped, Schedules: []*models.Schedule{}}

	for _, ev := range result.Events {
		s := &models.Schedule{
			Title:     ev.Title,
			StartTime: ev.Start,
			EndTime:   ev.End,
			Location:  ev.Location,
			OwnerID:   ownerID,
		}
		if err := i.schedules.Create(ctx, s); err != nil {
			return summary, fmt.Errorf("importing %q: %w", ev.UID, err)
		}
		summary.Created++
		summary.Schedules = append(summary.Schedules, s)
	}

	i.logger.Info("calendar imported",
		zap.String("owner_id", ownerID),
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}
