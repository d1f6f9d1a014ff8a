package i18n

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/planner"
)

func newTranslator(t *testing.T) *Translator {
	t.Helper()
	tr, err := NewTranslator("en", zap.NewNop())
	if err != nil {
		t.Fatalf("NewTranslator() error = %v", err)
	}
	return tr
}

func TestMatch(t *testing.T) {
	tr := newTranslator(t)

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"ja", "ja"},
		{"ja-JP,ja;q=0.9,en;q=0.8", "ja"},
		{"en-GB", "en"},
		{"fr-FR", "en"},
		{"not a header;;", "en"},
	}

	for _, tt := range tests {
		if got := tr.Match(tt.header).String(); got != tt.want {
			t.Errorf("Match(%q) = %s, want %s", tt.header, got, tt.want)
		}
	}
}

func TestEnglishMatchesDefaultLabels(t *testing.T) {
	labels := newTranslator(t).Localizer("en-US")
	var want planner.EnglishLabels

	day := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)
	start := day.Add(9 * time.Hour)
	end := start.Add(90 * time.Minute)
	hour := planner.HourLabel{Hour: 9, Label: "09:00"}

	if got := labels.DayLabel(day); got != want.DayLabel(day) {
		t.Errorf("DayLabel() = %q, want %q", got, want.DayLabel(day))
	}
	if got := labels.CellLabel(day, hour); got != want.CellLabel(day, hour) {
		t.Errorf("CellLabel() = %q, want %q", got, want.CellLabel(day, hour))
	}
	for _, location := range []string{"", "War Room"} {
		got := labels.EventLabel("Team Sync", day, start, end, location)
		if w := want.EventLabel("Team Sync", day, start, end, location); got != w {
			t.Errorf("EventLabel(%q) = %q, want %q", location, got, w)
		}
	}
}

func TestJapaneseLabels(t *testing.T) {
	labels := newTranslator(t).Localizer("ja")
	day := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)

	if got := labels.DayLabel(day); got != "5月15日 水曜日" {
		t.Errorf("DayLabel() = %q", got)
	}
	if got := labels.CellLabel(day, planner.HourLabel{Hour: 6, Label: "06:00"}); got != "2024年5月15日 水曜日 06:00" {
		t.Errorf("CellLabel() = %q", got)
	}

	got := labels.EventLabel("定例", day, day.Add(9*time.Hour), day.Add(10*time.Hour), "会議室A")
	if want := "定例、2024年5月15日 水曜日、09:00から10:00まで、場所: 会議室A"; got != want {
		t.Errorf("EventLabel() = %q, want %q", got, want)
	}
}

func TestMessage(t *testing.T) {
	tr := newTranslator(t)

	if got := tr.Localizer("").Message("LoginSuccess", nil); got != "Welcome back!" {
		t.Errorf("Message(LoginSuccess) = %q", got)
	}
	if got := tr.Localizer("ja").Message("LogoutSuccess", nil); got != "ログアウトしました。" {
		t.Errorf("ja Message(LogoutSuccess) = %q", got)
	}
	if got := tr.Localizer("").Message("NoSuchMessage", nil); got != "NoSuchMessage" {
		t.Errorf("unknown message = %q, want the id", got)
	}
}

func TestPlannerUsesLocalizedLabels(t *testing.T) {
	labels := newTranslator(t).Localizer("ja")
	b := planner.NewBuilder(planner.DefaultSettings(), planner.WithLabeler(labels))

	monday := time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC)
	p, err := b.Build(nil, monday, "viewer")
	if err != nil {
		t.Fatal(err)
	}
	if p.Days[0].Label != "5月13日 月曜日" {
		t.Errorf("Days[0].Label = %q", p.Days[0].Label)
	}
}
