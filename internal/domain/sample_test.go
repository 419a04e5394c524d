package domain

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPositions(events ...Event) []Event {
	return NewCatalog(events).Events()
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, 1, LabelFor(5.5, 5.5))
	assert.Equal(t, 1, LabelFor(7.1, 5.5))
	assert.Equal(t, 0, LabelFor(5.49, 5.5))
	assert.Equal(t, 0, LabelFor(math.NaN(), 5.5))
}

func TestBuildSample_Features(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() { SetClock(nil) })

	a := quake("a", 0, 0, 3.0, baseTime)
	a.DepthKm = 10
	b := quake("b", 0, 90, 4.5, baseTime.Add(90*time.Minute))
	b.DepthKm = 25
	c := quake("c", 90, 0, 5.5, baseTime.Add(90*time.Minute+30*time.Second))
	c.DepthKm = 5

	s, err := BuildSample(withPositions(a, b, c), 5.5)
	require.NoError(t, err)

	r := EarthRadiusKm
	want := [][FeatureCount]float64{
		{1.5, 15, -r, r, 0, 1.5},
		{1.0, -20, 0, -r, r, 30.0 / 3600},
	}
	if diff := cmp.Diff(want, s.Features, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("features mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, s.Label)
	assert.Equal(t, "c", s.TargetID)
	assert.Equal(t, []string{"a", "b", "c"}, s.Window)
	assert.Equal(t, fakeClock.Now(), s.GeneratedAt)
}

func TestBuildSample_TimeDeltasSumToSpan(t *testing.T) {
	window := withPositions(
		quake("a", 1, 1, 3, baseTime),
		quake("b", 1, 1, 3, baseTime.Add(17*time.Second+250*time.Millisecond)),
		quake("c", 1, 1, 3, baseTime.Add(49*time.Hour+3*time.Second)),
		quake("d", 1, 1, 3, baseTime.AddDate(3, 2, 1)),
	)

	s, err := BuildSample(window, 5.5)
	require.NoError(t, err)
	require.Len(t, s.Features, 3)

	var sum float64
	for _, row := range s.Features {
		sum += row[5]
	}
	span := window[3].OccurredAt.Sub(window[0].OccurredAt).Hours()
	assert.InDelta(t, span, sum, 1e-9)
	assert.Equal(t, 0, s.Label)
}

func TestBuildSample_CenturiesApart(t *testing.T) {
	window := withPositions(
		quake("old", 0, 0, 3, time.Date(1700, time.January, 1, 0, 0, 0, 0, time.UTC)),
		quake("new", 0, 0, 3, time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)),
	)

	s, err := BuildSample(window, 5.5)
	require.NoError(t, err)
	// A Gregorian 400-year cycle is exactly 146097 days.
	assert.Equal(t, float64(146097*24), s.Features[0][5])
}

func TestBuildSample_EqualTimestampsAreLegal(t *testing.T) {
	window := withPositions(
		quake("a", 0, 0, 3, baseTime),
		quake("b", 0, 0, 4, baseTime),
	)

	s, err := BuildSample(window, 5.5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Features[0][5])
}

func TestBuildSample_PropagatesNaN(t *testing.T) {
	window := withPositions(
		quake("a", 0, 0, math.NaN(), baseTime),
		quake("b", 0, 0, 4, baseTime.Add(time.Hour)),
		quake("c", 0, 0, math.Inf(1), baseTime.Add(2*time.Hour)),
	)

	s, err := BuildSample(window, 5.5)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(s.Features[0][0]))
	assert.True(t, math.IsInf(s.Features[1][0], 1))
	assert.Equal(t, 1, s.Label)
}

func TestBuildSample_Errors(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		_, err := BuildSample(withPositions(quake("a", 0, 0, 3, baseTime)), 5.5)
		require.Error(t, err)
	})

	t.Run("out of order", func(t *testing.T) {
		_, err := BuildSample(withPositions(
			quake("a", 0, 0, 3, baseTime.Add(time.Hour)),
			quake("b", 0, 0, 3, baseTime),
		), 5.5)
		require.ErrorIs(t, err, ErrMalformedTimestamp)
		var terr *MalformedTimestampError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, "b", terr.EventID)
	})

	t.Run("missing timestamp", func(t *testing.T) {
		_, err := BuildSample(withPositions(
			quake("a", 0, 0, 3, time.Time{}),
			quake("b", 0, 0, 3, baseTime),
		), 5.5)
		require.ErrorIs(t, err, ErrMalformedTimestamp)
		assert.Equal(t, "malformed_timestamp", SkipReason(err))
	})
}

func TestSampleForEvent(t *testing.T) {
	c := NewCatalog(history(35, 5.5))
	p := DefaultParams()

	s, err := SampleForEvent(c, "target", p)
	require.NoError(t, err)
	assert.Len(t, s.Features, p.NumEarthquakes)
	assert.Len(t, s.Window, p.NumEarthquakes+1)
	assert.Equal(t, "target", s.Window[len(s.Window)-1])
	assert.Equal(t, 1, s.Label)
	for _, row := range s.Features {
		assert.InDelta(t, 1.0, row[5], 1e-12)
	}
}

func TestSampleForEvent_SkipsWithTypedErrors(t *testing.T) {
	c := NewCatalog(history(3, 6))

	_, err := SampleForEvent(c, "target", DefaultParams())
	require.ErrorIs(t, err, ErrInsufficientHistory)

	_, err = SampleForEvent(c, "ghost", DefaultParams())
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "not_found", SkipReason(err))
}
