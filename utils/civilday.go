package utils

import (
	"math"
	"time"
)

// All day-boundary decisions in the planner go through this file so that
// every component shares one notion of "today". The zone is fixed for the
// whole system at boot; callers never use their own local zone.

var civilZone = time.UTC

// InitTimeZone fixes the civil time zone used for day boundaries. Returns
// an error when the zone name is unknown, leaving UTC in place.
func InitTimeZone(name string) error {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	civilZone = loc
	return nil
}

// CivilZone returns the fixed zone day boundaries are computed in.
func CivilZone() *time.Location {
	return civilZone
}

// DayOf truncates an instant to midnight of its calendar day in the fixed
// civil zone.
func DayOf(t time.Time) time.Time {
	local := t.In(civilZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, civilZone)
}

// Today returns the current calendar day.
func Today() time.Time {
	return DayOf(time.Now())
}

// DaysBetween returns the signed number of calendar days from b to a,
// ignoring time-of-day. Rounding absorbs DST transitions where a civil day
// is 23 or 25 hours long.
func DaysBetween(a, b time.Time) int {
	diff := DayOf(a).Sub(DayOf(b))
	return int(math.Round(diff.Hours() / 24))
}

// SameCivilDay reports whether two instants fall on the same calendar day.
func SameCivilDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}
