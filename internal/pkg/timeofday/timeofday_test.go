package timeofday

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	got, err := Parse("08:30")
	require.NoError(t, err)
	assert.Equal(t, New(8, 30, 0), got)

	got, err = Parse("22:10:15")
	require.NoError(t, err)
	assert.Equal(t, "22:10:15", got.String())

	_, err = Parse("25:00")
	assert.Error(t, err)
	_, err = Parse("8am")
	assert.Error(t, err)
}

func TestSpan(t *testing.T) {
	cases := []struct {
		name       string
		start, end Time
		want       time.Duration
	}{
		{"day shift", New(8, 0, 0), New(16, 0, 0), 8 * time.Hour},
		{"night shift wraps", New(22, 0, 0), New(6, 0, 0), 8 * time.Hour},
		{"evening shift ending at midnight", New(16, 0, 0), New(0, 0, 0), 8 * time.Hour},
		{"night punches", New(22, 10, 0), New(6, 5, 0), 7*time.Hour + 55*time.Minute},
		{"equal", New(9, 0, 0), New(9, 0, 0), 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Span(c.start, c.end))
		})
	}
}

func TestCrossesMidnight(t *testing.T) {
	assert.True(t, CrossesMidnight(New(22, 0, 0), New(6, 0, 0)))
	assert.True(t, CrossesMidnight(New(16, 0, 0), New(0, 0, 0)))
	assert.False(t, CrossesMidnight(New(8, 0, 0), New(16, 0, 0)))
}

func TestAddWraps(t *testing.T) {
	assert.Equal(t, New(0, 15, 0), New(23, 45, 0).Add(30*time.Minute))
	assert.Equal(t, New(23, 50, 0), New(0, 10, 0).Add(-20*time.Minute))
}

func TestOfAndOn(t *testing.T) {
	ts := time.Date(2024, 2, 1, 6, 5, 9, 0, time.UTC)
	tod := Of(ts)
	assert.Equal(t, "06:05:09", tod.String())
	assert.Equal(t, ts, tod.On(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestJSONAndScan(t *testing.T) {
	b, err := json.Marshal(struct {
		At Time `json:"at"`
	}{At: New(7, 0, 0)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"07:00:00"}`, string(b))

	var decoded struct {
		At *Time `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"19:30"}`), &decoded))
	require.NotNil(t, decoded.At)
	assert.Equal(t, New(19, 30, 0), *decoded.At)

	var scanned Time
	require.NoError(t, scanned.Scan([]byte("13:45:00")))
	assert.Equal(t, New(13, 45, 0), scanned)
	assert.Error(t, scanned.Scan(42))
}
