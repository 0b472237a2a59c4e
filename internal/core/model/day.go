package model

import (
	"fmt"
	"time"
)

// DateLayout is the key format of daily rollups.
const DateLayout = "2006-01-02"

// Midnight returns 00:00 of the day containing t in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// FormatDate returns the date key of the day containing t in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// ParseDate parses a date key into the local midnight of that day.
func ParseDate(field, value string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", value)}
	}
	return day, nil
}

// DayBounds returns the first and last millisecond of the local day that
// starts at midnight. DST days are 23 or 25 hours long.
func DayBounds(midnight time.Time) (int64, int64) {
	next := midnight.AddDate(0, 0, 1)
	return midnight.UnixMilli(), next.UnixMilli() - 1
}

// DaysBetween counts calendar days from one local midnight to another.
func DaysBetween(from, to time.Time) int {
	fromUTC := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toUTC := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toUTC.Sub(fromUTC).Hours() / 24)
}
