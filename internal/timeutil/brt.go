package timeutil

import (
	"time"
)

// BRT is the clinic's local time (America/Sao_Paulo, UTC-3)
var BRT *time.Location

func init() {
	var err error
	BRT, err = time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		BRT = time.FixedZone("BRT", -3*60*60)
	}
}

// SetLocation switches the clinic zone; an unknown name keeps the current one.
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	BRT = loc
	return nil
}

// Now returns the current time in the clinic zone
func Now() time.Time {
	return time.Now().In(BRT)
}

func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, BRT)
}

// backendLayouts are the timestamp shapes the REST backend emits: local
// date-times with optional fractional seconds, zoned RFC 3339, or bare dates.
var backendLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	DateLayout,
}

// ParseBackend parses a backend timestamp, reading zone-less values as clinic time.
func ParseBackend(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.In(BRT), nil
	}
	var lastErr error
	for _, layout := range backendLayouts {
		t, err := time.ParseInLocation(layout, value, BRT)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// StartOfDay returns 00:00:00 in the clinic zone for the given time
func StartOfDay(t time.Time) time.Time {
	l := t.In(BRT)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, BRT)
}

// EndOfDay returns 23:59:59.999999999 in the clinic zone for the given time
func EndOfDay(t time.Time) time.Time {
	l := t.In(BRT)
	return time.Date(l.Year(), l.Month(), l.Day(), 23, 59, 59, 999999999, BRT)
}

// DaysBetween counts whole calendar days from a to b in the clinic zone.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// Age returns completed years at the given reference time.
func Age(birth, at time.Time) int {
	b := birth.In(BRT)
	a := at.In(BRT)
	years := a.Year() - b.Year()
	if a.Month() < b.Month() || (a.Month() == b.Month() && a.Day() < b.Day()) {
		years--
	}
	return years
}

const (
	DateLayout        = "2006-01-02"
	DateTimeLayout    = "2006-01-02T15:04:05"
	DisplayDate       = "02/01/2006"
	DisplayDateTime   = "02/01/2006 15:04"
	HTMLDateTimeLocal = "2006-01-02T15:04"
)
