package timeutil

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{
			name:  "RFC3339 with offset",
			input: "2026-08-30T08:15:00+02:00",
			want:  time.Date(2026, 8, 30, 8, 15, 0, 0, time.FixedZone("", 2*3600)),
			ok:    true,
		},
		{
			name:  "local layout without zone",
			input: "2026-08-30T08:15:00",
			want:  time.Date(2026, 8, 30, 8, 15, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "empty string",
			input: "",
			ok:    false,
		},
		{
			name:  "garbage",
			input: "not-a-time",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDelayMinutes(t *testing.T) {
	tests := []struct {
		name      string
		scheduled string
		estimated string
		want      float64
	}{
		{
			name:      "twenty minutes late",
			scheduled: "2026-08-30T10:30:00+02:00",
			estimated: "2026-08-30T10:50:00+02:00",
			want:      20,
		},
		{
			name:      "five minutes early is negative",
			scheduled: "2026-08-30T10:30:00+02:00",
			estimated: "2026-08-30T10:25:00+02:00",
			want:      -5,
		},
		{
			name:      "on time",
			scheduled: "2026-08-30T10:30:00+02:00",
			estimated: "2026-08-30T10:30:00+02:00",
			want:      0,
		},
		{
			name:      "invalid scheduled yields zero",
			scheduled: "",
			estimated: "2026-08-30T10:30:00+02:00",
			want:      0,
		},
		{
			name:      "invalid estimated yields zero",
			scheduled: "2026-08-30T10:30:00+02:00",
			estimated: "bogus",
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DelayMinutes(tt.scheduled, tt.estimated)
			if got != tt.want {
				t.Errorf("DelayMinutes(%q, %q) = %v, want %v", tt.scheduled, tt.estimated, got, tt.want)
			}
		})
	}
}
