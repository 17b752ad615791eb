package schema

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	loc := time.UTC

	parsed, err := ParseTime("2017-03-18", "", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2017, 3, 18, 0, 0, 0, 0, loc), parsed)

	parsed, err = ParseTime("2017-03-18 10:11:12", "", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2017, 3, 18, 10, 11, 12, 0, loc), parsed)

	parsed, err = ParseTime("2017-03-18T10:11:12Z", "", loc)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(time.Date(2017, 3, 18, 10, 11, 12, 0, loc)))

	parsed, err = ParseTime(int64(0), "", loc)
	require.NoError(t, err)
	assert.Equal(t, int64(0), parsed.Unix())

	// bare integers are always an epoch, even when they look like a year
	parsed, err = ParseTime("2017", "", loc)
	require.NoError(t, err)
	assert.Equal(t, int64(2017), parsed.Unix())

	original := time.Date(2020, 1, 2, 3, 4, 5, 0, loc)
	parsed, err = ParseTime(original, "", loc)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)

	_, err = ParseTime("not a date", "", loc)
	assert.True(t, errors.Is(err, ErrInvalidDate))

	_, err = ParseTime(struct{}{}, "", loc)
	assert.True(t, errors.Is(err, ErrInvalidDate))
}

func TestParseTimeCustomLayout(t *testing.T) {
	parsed, err := ParseTime("18/03/2017 10:11", "02/01/2006 15:04", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2017, 3, 18, 10, 11, 0, 0, time.UTC), parsed)
}

func TestStartOfDayAndFormat(t *testing.T) {
	day := StartOfDay(time.Date(2017, 3, 18, 10, 11, 12, 13, time.UTC))
	assert.Equal(t, time.Date(2017, 3, 18, 0, 0, 0, 0, time.UTC), day)
	assert.Equal(t, "2017-03-18", FormatTime(day, DateOnlyFormat))
	assert.Equal(t, "2017-03-18 00:00:00", FormatTime(day, ""))
}
