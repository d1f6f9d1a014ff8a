// Package i18n localizes planner labels and user-facing API messages.
package i18n

import (
	"embed"
	"fmt"
	"strconv"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/team-calendar/backend/internal/planner"
)

//go:embed active.*.toml
var localeFS embed.FS

var localeFiles = []string{"active.en.toml", "active.ja.toml"}

// Translator is a thin wrapper around go-i18n's Bundle with
// Accept-Language negotiation.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	supported       []language.Tag
	matcher         language.Matcher
	logger          *zap.Logger
}

// NewTranslator loads the embedded catalogs. Requests that match no
// catalog use defaultLocale.
func NewTranslator(defaultLocale string, logger *zap.Logger) (*Translator, error) {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("parsing default locale %q: %w", defaultLocale, err)
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	// The default goes first so the matcher falls back to it.
	supported := []language.Tag{tag}
	for _, t := range bundle.LanguageTags() {
		if t.String() != tag.String() {
			supported = append(supported, t)
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
		supported:       supported,
		matcher:         language.NewMatcher(supported),
		logger:          logger,
	}, nil
}

// Match picks the best supported language for an Accept-Language header.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.defaultLanguage
	}
	_, index, _ := t.matcher.Match(tags...)
	return t.supported[index]
}

// Localizer returns the labels and messages for an Accept-Language header.
func (t *Translator) Localizer(acceptLanguage string) *Labels {
	tag := t.Match(acceptLanguage)
	return &Labels{
		lang:      tag,
		localizer: i18n.NewLocalizer(t.bundle, tag.String(), t.defaultLanguage.String()),
		logger:    t.logger,
	}
}

// Labels renders planner labels in one language.
type Labels struct {
	lang      language.Tag
	localizer *i18n.Localizer
	logger    *zap.Logger
}

var _ planner.Labeler = (*Labels)(nil)

// Language is the negotiated language.
func (l *Labels) Language() language.Tag {
	return l.lang
}

// Message renders the message identified by id. Unknown ids render as the id.
func (l *Labels) Message(id string, data map[string]any) string {
	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		l.logger.Warn("localize failed", zap.String("message_id", id), zap.String("lang", l.lang.String()), zap.Error(err))
		return id
	}
	return msg
}

func (l *Labels) dateData(day time.Time) map[string]any {
	weekday := l.Message(day.Weekday().String(), nil)
	month := l.Message(day.Month().String(), nil)
	return map[string]any{
		"Weekday":     weekday,
		"Month":       month,
		"MonthShort":  shorten(month),
		"MonthNumber": int(day.Month()),
		"Day":         day.Format("02"),
		"DayNumber":   day.Day(),
		"Year":        strconv.Itoa(day.Year()),
	}
}

func (l *Labels) longDate(day time.Time) string {
	return l.Message("LongDate", l.dateData(day))
}

func (l *Labels) DayLabel(day time.Time) string {
	return l.Message("DayLabel", l.dateData(day))
}

func (l *Labels) CellLabel(day time.Time, hour planner.HourLabel) string {
	return l.Message("CellLabel", map[string]any{
		"Date": l.longDate(day),
		"Hour": hour.Label,
	})
}

func (l *Labels) EventLabel(title string, day, start, end time.Time, location string) string {
	label := l.Message("EventLabel", map[string]any{
		"Title": title,
		"Date":  l.longDate(day),
		"Start": start.Format("15:04"),
		"End":   end.Format("15:04"),
	})
	if location != "" {
		label += l.Message("EventLocation", map[string]any{"Location": location})
	}
	return label
}

// shorten abbreviates a month name to three characters.
func shorten(name string) string {
	r := []rune(name)
	if len(r) <= 3 {
		return name
	}
	return string(r[:3])
}
