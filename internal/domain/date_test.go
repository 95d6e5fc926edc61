package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOnly(t *testing.T) {
	in := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), DateOnly(in))

	// Calendar day is taken in the value's own location
	lisbon := time.FixedZone("WET", 0)
	tokyo := time.FixedZone("JST", 9*3600)
	assert.Equal(t, DateOnly(time.Date(2024, 2, 1, 1, 0, 0, 0, tokyo)), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, DateOnly(time.Date(2024, 2, 1, 1, 0, 0, 0, lisbon)), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
}

func TestStartOfMonth(t *testing.T) {
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)))
}

func TestDaysBetween(t *testing.T) {
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, DaysBetween(jan1, time.Date(2024, 1, 31, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, DaysBetween(jan1, jan1))
	assert.Equal(t, 29, DaysBetween(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-01-31T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("31/01/2024")
	assert.Error(t, err)
}
