package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withZone(t *testing.T, name string) {
	t.Helper()
	prev := civilZone
	require.NoError(t, InitTimeZone(name))
	t.Cleanup(func() { civilZone = prev })
}

func TestDayOf_TruncatesToMidnight(t *testing.T) {
	in := time.Date(2026, 3, 5, 23, 59, 58, 0, time.UTC)
	got := DayOf(in)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), got)
}

func TestDayOf_ConvertsIntoCivilZone(t *testing.T) {
	withZone(t, "America/New_York")

	// 02:00 UTC is still the previous evening in New York
	in := time.Date(2026, 3, 5, 2, 0, 0, 0, time.UTC)
	got := DayOf(in)
	assert.Equal(t, 4, got.Day())
	assert.Equal(t, time.March, got.Month())
	assert.Zero(t, got.Hour())
}

func TestInitTimeZone_UnknownNameKeepsCurrentZone(t *testing.T) {
	withZone(t, "UTC")

	err := InitTimeZone("Not/AZone")
	assert.Error(t, err)
	assert.Equal(t, time.UTC, CivilZone())
}

func TestInitTimeZone_EmptyIsNoOp(t *testing.T) {
	withZone(t, "UTC")
	require.NoError(t, InitTimeZone(""))
	assert.Equal(t, time.UTC, CivilZone())
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 3, 5, 1, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, DaysBetween(a, b))
	assert.Equal(t, -3, DaysBetween(b, a))
	assert.Zero(t, DaysBetween(a, a))
}

func TestDaysBetween_AcrossSpringForward(t *testing.T) {
	withZone(t, "America/New_York")

	// the night of 2026-03-08 is 23 hours long in New York
	before := time.Date(2026, 3, 7, 12, 0, 0, 0, CivilZone())
	after := time.Date(2026, 3, 9, 12, 0, 0, 0, CivilZone())
	assert.Equal(t, 2, DaysBetween(after, before))
}

func TestSameCivilDay(t *testing.T) {
	morning := time.Date(2026, 3, 5, 1, 0, 0, 0, time.UTC)
	night := time.Date(2026, 3, 5, 23, 0, 0, 0, time.UTC)
	nextDay := time.Date(2026, 3, 6, 0, 0, 1, 0, time.UTC)

	assert.True(t, SameCivilDay(morning, night))
	assert.False(t, SameCivilDay(night, nextDay))
}
