package services

import (
	"time"

	"github.com/planpulse/planpulse/utils"
)

// StreakUpdate is the result of folding one completion day into streak
// state.
type StreakUpdate struct {
	Current       int
	Longest       int
	LastCompleted time.Time
}

// UpdateStreak folds a completion on day into the current streak counters.
// Same-day repeats leave the streak as is, a one-day gap extends it, a
// larger gap resets it to 1. A day earlier than the last known completion
// (out-of-order backfill) is ignored entirely: counters and the last
// completed date stay put.
func UpdateStreak(current, longest int, lastCompleted *time.Time, day time.Time) StreakUpdate {
	next := StreakUpdate{Current: current, Longest: longest, LastCompleted: utils.DayOf(day)}

	if lastCompleted == nil {
		next.Current = 1
	} else {
		switch gap := utils.DaysBetween(day, *lastCompleted); {
		case gap == 0:
			// keep current
		case gap == 1:
			next.Current = current + 1
		case gap > 1:
			next.Current = 1
		default:
			next.LastCompleted = *lastCompleted
		}
	}

	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	return next
}

// RecomputeFromHistory rebuilds current/longest from a sequence of distinct
// completion days sorted ascending. It produces the same result as applying
// UpdateStreak over the sequence, and exists so streak state can be
// verified or rebuilt from the progress ledger.
func RecomputeFromHistory(sortedDistinctDays []time.Time) (current, longest int) {
	var last *time.Time
	for i := range sortedDistinctDays {
		upd := UpdateStreak(current, longest, last, sortedDistinctDays[i])
		current, longest = upd.Current, upd.Longest
		d := upd.LastCompleted
		last = &d
	}
	return current, longest
}
