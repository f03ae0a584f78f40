package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUpdateStreak_FirstCompletionStartsAtOne(t *testing.T) {
	upd := UpdateStreak(0, 0, nil, day(2026, 3, 1))
	assert.Equal(t, 1, upd.Current)
	assert.Equal(t, 1, upd.Longest)
	assert.True(t, upd.LastCompleted.Equal(day(2026, 3, 1)))
}

func TestUpdateStreak_ConsecutiveDayExtends(t *testing.T) {
	last := day(2026, 3, 1)
	upd := UpdateStreak(3, 5, &last, day(2026, 3, 2))
	assert.Equal(t, 4, upd.Current)
	assert.Equal(t, 5, upd.Longest)
}

func TestUpdateStreak_SameDayRepeatKeepsStreak(t *testing.T) {
	last := day(2026, 3, 2)
	upd := UpdateStreak(4, 5, &last, day(2026, 3, 2).Add(18*time.Hour))
	assert.Equal(t, 4, upd.Current)
	assert.Equal(t, 5, upd.Longest)
	assert.True(t, upd.LastCompleted.Equal(day(2026, 3, 2)))
}

func TestUpdateStreak_GapResetsToOne(t *testing.T) {
	last := day(2026, 3, 2)
	upd := UpdateStreak(4, 5, &last, day(2026, 3, 5))
	assert.Equal(t, 1, upd.Current)
	assert.Equal(t, 5, upd.Longest)
}

func TestUpdateStreak_LongestFollowsCurrent(t *testing.T) {
	last := day(2026, 3, 2)
	upd := UpdateStreak(5, 5, &last, day(2026, 3, 3))
	assert.Equal(t, 6, upd.Current)
	assert.Equal(t, 6, upd.Longest)
}

func TestUpdateStreak_BackfillIsIgnored(t *testing.T) {
	last := day(2026, 3, 10)
	upd := UpdateStreak(4, 6, &last, day(2026, 3, 7))
	assert.Equal(t, 4, upd.Current)
	assert.Equal(t, 6, upd.Longest)
	// the last completed day must not move backwards
	assert.True(t, upd.LastCompleted.Equal(last))
}

func TestRecomputeFromHistory_MatchesFolding(t *testing.T) {
	days := []time.Time{
		day(2026, 3, 1),
		day(2026, 3, 2),
		day(2026, 3, 3),
		day(2026, 3, 6),
		day(2026, 3, 7),
	}

	current, longest := RecomputeFromHistory(days)
	assert.Equal(t, 2, current)
	assert.Equal(t, 3, longest)

	// equivalence with repeated UpdateStreak application
	var cur, lon int
	var last *time.Time
	for _, d := range days {
		upd := UpdateStreak(cur, lon, last, d)
		cur, lon = upd.Current, upd.Longest
		lc := upd.LastCompleted
		last = &lc
	}
	assert.Equal(t, cur, current)
	assert.Equal(t, lon, longest)
}

func TestRecomputeFromHistory_Empty(t *testing.T) {
	current, longest := RecomputeFromHistory(nil)
	assert.Zero(t, current)
	assert.Zero(t, longest)
}
