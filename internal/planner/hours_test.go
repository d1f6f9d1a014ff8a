package planner

import (
	"errors"
	"testing"
)

func TestBuildHours(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		end      int
		interval int
		want     []string
	}{
		{"hourly default window", 6, 22, 60, nil},
		{"two hour steps", 6, 22, 120, []string{"06:00", "08:00", "10:00", "12:00", "14:00", "16:00", "18:00", "20:00", "22:00"}},
		{"half hour stops after first label", 6, 22, 30, []string{"06:00"}},
		{"ninety minutes stops after first label", 8, 12, 90, []string{"08:00"}},
		{"zero interval is clamped", 9, 17, 0, []string{"09:00"}},
		{"single hour window", 9, 9, 60, []string{"09:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours, err := BuildHours(tt.start, tt.end, tt.interval)
			if err != nil {
				t.Fatalf("BuildHours() error = %v", err)
			}

			if tt.want == nil {
				if len(hours) != tt.end-tt.start+1 {
					t.Fatalf("got %d labels, want %d", len(hours), tt.end-tt.start+1)
				}
				if hours[0].Label != "06:00" || hours[len(hours)-1].Label != "22:00" {
					t.Errorf("range = %s..%s, want 06:00..22:00", hours[0].Label, hours[len(hours)-1].Label)
				}
				return
			}

			if len(hours) != len(tt.want) {
				t.Fatalf("got %d labels %v, want %v", len(hours), hours, tt.want)
			}
			for i, label := range tt.want {
				if hours[i].Label != label {
					t.Errorf("hours[%d].Label = %q, want %q", i, hours[i].Label, label)
				}
			}
		})
	}
}

func TestBuildHoursEmptyIsConfigurationError(t *testing.T) {
	hours, err := BuildHours(10, 8, 60)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}
	if hours != nil {
		t.Errorf("hours = %v, want nil", hours)
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}

	for _, s := range []Settings{
		{StartHour: 10, EndHour: 8, IntervalMinutes: 60},
		{StartHour: -1, EndHour: 8, IntervalMinutes: 60},
		{StartHour: 6, EndHour: 30, IntervalMinutes: 60},
	} {
		if err := s.Validate(); !errors.Is(err, ErrConfiguration) {
			t.Errorf("Validate(%+v) = %v, want ErrConfiguration", s, err)
		}
	}
}
