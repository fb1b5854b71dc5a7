package timeutil

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 3, 1, 23, 0, 0, 0, BRT)
	b := time.Date(2024, 3, 11, 1, 0, 0, 0, BRT)
	if got := DaysBetween(a, b); got != 10 {
		t.Errorf("DaysBetween = %d, want 10", got)
	}
	if got := DaysBetween(b, b); got != 0 {
		t.Errorf("DaysBetween same day = %d, want 0", got)
	}
}

func TestAge(t *testing.T) {
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, BRT)
	tests := []struct {
		at   time.Time
		want int
	}{
		{time.Date(2024, 6, 14, 12, 0, 0, 0, BRT), 33},
		{time.Date(2024, 6, 15, 12, 0, 0, 0, BRT), 34},
		{time.Date(2024, 12, 1, 12, 0, 0, 0, BRT), 34},
	}
	for _, tt := range tests {
		if got := Age(birth, tt.at); got != tt.want {
			t.Errorf("Age(%s) = %d, want %d", tt.at.Format(DateLayout), got, tt.want)
		}
	}
}

func TestStartAndEndOfDay(t *testing.T) {
	ts := time.Date(2024, 5, 10, 14, 30, 0, 0, BRT)
	if s := StartOfDay(ts); s.Hour() != 0 || s.Day() != 10 {
		t.Errorf("StartOfDay = %v", s)
	}
	if e := EndOfDay(ts); e.Hour() != 23 || e.Minute() != 59 || e.Day() != 10 {
		t.Errorf("EndOfDay = %v", e)
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
		day     int
		hour    int
	}{
		{"2024-03-10T14:05:00", false, 10, 14},
		{"2024-03-10T14:05:00.123456", false, 10, 14},
		{"2024-03-10T14:05", false, 10, 14},
		{"2024-03-10", false, 10, 0},
		{"2024-03-10T17:05:00Z", false, 10, 14},
		{"10/03/2024", true, 0, 0},
		{"", true, 0, 0},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBackend(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if got.Day() != tt.day || got.Hour() != tt.hour {
			t.Errorf("ParseBackend(%q) = %v, want day %d hour %d", tt.in, got, tt.day, tt.hour)
		}
	}
}
