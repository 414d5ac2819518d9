package dicomio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDAPrecisions(t *testing.T) {
	d, err := ParseDA("2024")
	require.NoError(t, err)
	assert.Equal(t, PartialDate{Year: 2024, Precision: 4}, d)

	d, err = ParseDA("202403")
	require.NoError(t, err)
	assert.Equal(t, PartialDate{Year: 2024, Month: 3, Precision: 6}, d)

	d, err = ParseDA("20240317")
	require.NoError(t, err)
	assert.Equal(t, PartialDate{Year: 2024, Month: 3, Day: 17, Precision: 8}, d)
}

func TestParseDATrimsTrailingSpace(t *testing.T) {
	d, err := ParseDA("20240317 ")
	require.NoError(t, err)
	assert.Equal(t, 17, d.Day)
}

func TestParseDAInvalidLength(t *testing.T) {
	_, err := ParseDA("2024031")
	assert.Error(t, err)
}

func TestParseTMPrecisions(t *testing.T) {
	tm, err := ParseTM("14")
	require.NoError(t, err)
	assert.Equal(t, PartialTime{Hour: 14, Precision: 1}, tm)

	tm, err = ParseTM("1430")
	require.NoError(t, err)
	assert.Equal(t, PartialTime{Hour: 14, Minute: 30, Precision: 2}, tm)

	tm, err = ParseTM("143005")
	require.NoError(t, err)
	assert.Equal(t, PartialTime{Hour: 14, Minute: 30, Second: 5, Precision: 3}, tm)

	tm, err = ParseTM("143005.5")
	require.NoError(t, err)
	assert.Equal(t, PartialTime{Hour: 14, Minute: 30, Second: 5, Microsecond: 500000, Precision: 4}, tm)
}

func TestParseTMInvalid(t *testing.T) {
	_, err := ParseTM("1")
	assert.Error(t, err)
}

func TestParseDTDateOnly(t *testing.T) {
	dt, err := ParseDT("2024")
	require.NoError(t, err)
	assert.Equal(t, 2024, dt.Date.Year)
	assert.False(t, dt.HasTime)
	assert.False(t, dt.HasOffset)
}

func TestParseDTFullWithOffset(t *testing.T) {
	dt, err := ParseDT("20240317143005.500000+0130")
	require.NoError(t, err)
	assert.Equal(t, PartialDate{Year: 2024, Month: 3, Day: 17, Precision: 8}, dt.Date)
	require.True(t, dt.HasTime)
	assert.Equal(t, 14, dt.Time.Hour)
	assert.Equal(t, 30, dt.Time.Minute)
	assert.Equal(t, 5, dt.Time.Second)
	assert.Equal(t, 500000, dt.Time.Microsecond)
	require.True(t, dt.HasOffset)
	assert.Equal(t, 90, dt.OffsetMinutes)
}

func TestParseDTNegativeOffset(t *testing.T) {
	dt, err := ParseDT("20240317-0500")
	require.NoError(t, err)
	assert.Equal(t, -300, dt.OffsetMinutes)
	assert.False(t, dt.HasTime)
}

func TestParseDTMalformedZone(t *testing.T) {
	_, err := ParseDT("20240317+5")
	assert.Error(t, err)
}

func TestPartialDateTimeToTime(t *testing.T) {
	dt, err := ParseDT("20240317143005.500000+0130")
	require.NoError(t, err)
	tm, err := dt.ToTime()
	require.NoError(t, err)
	expected := time.Date(2024, 3, 17, 14, 30, 5, 500000000, time.FixedZone("", 90*60))
	assert.True(t, expected.Equal(tm))
}

func TestPartialDateTimeToTimeRequiresFullDatePrecision(t *testing.T) {
	dt, err := ParseDT("2024")
	require.NoError(t, err)
	_, err = dt.ToTime()
	assert.Error(t, err)
}
