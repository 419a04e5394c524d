package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// hoursPerYear matches the lookback arithmetic of the historical pipeline:
// a year is 365.25 days and the window is truncated to whole hours.
const hoursPerYear = 365.25 * 24

// DistanceFilter keeps events within radiusKm great-circle kilometres of the
// target. The target row is always kept.
func DistanceFilter(c *Catalog, targetID string, radiusKm float64) (*Catalog, error) {
	row, err := c.rowOf(targetID)
	if err != nil {
		return nil, fmt.Errorf("distance filter: %w", err)
	}
	return c.Mask(distanceMask(c.cols, row, radiusKm)), nil
}

func distanceMask(cols Columns, row int, radiusKm float64) []bool {
	origin := Geo{Lat: cols.Lat[row], Lon: cols.Lon[row]}
	keep := make([]bool, len(cols.IDs))
	for i := range keep {
		d := GreatCircleDistance(origin, Geo{Lat: cols.Lat[i], Lon: cols.Lon[i]})
		keep[i] = d <= radiusKm
	}
	keep[row] = true
	return keep
}

// TimeFilter keeps events with cutoff <= t <= target time, where cutoff is
// pastYears (truncated to whole hours) before the target. Both bounds are
// inclusive.
func TimeFilter(c *Catalog, targetID string, pastYears float64) (*Catalog, error) {
	row, err := c.rowOf(targetID)
	if err != nil {
		return nil, fmt.Errorf("time filter: %w", err)
	}
	target := c.cols.OccurredAt[row]
	cutoff, bounded := lookbackCutoff(target, pastYears)

	keep := make([]bool, c.Len())
	for i, t := range c.cols.OccurredAt {
		keep[i] = !t.After(target) && (!bounded || !t.Before(cutoff))
	}
	return c.Mask(keep), nil
}

// lookbackCutoff subtracts the lookback on Unix seconds so that windows
// longer than time.Duration's ~292 year range do not overflow. bounded is
// false when the lookback reaches past any representable instant.
func lookbackCutoff(target time.Time, pastYears float64) (time.Time, bool) {
	hours := math.Trunc(pastYears * hoursPerYear)
	secs := hours * 3600
	if secs >= math.MaxInt64/2 || math.IsNaN(secs) {
		return time.Time{}, false
	}
	cutoff := time.Unix(target.Unix()-int64(secs), int64(target.Nanosecond()))
	return cutoff.In(target.Location()), true
}

// PastEventsFilter selects the n most recent events strictly before the
// target, ordered oldest first. Events sharing a timestamp are ordered by ID.
// It fails with *InsufficientHistoryError when fewer than n qualify.
func PastEventsFilter(c *Catalog, targetID string, n int) (Window, error) {
	row, err := c.rowOf(targetID)
	if err != nil {
		return Window{}, fmt.Errorf("past events filter: %w", err)
	}
	target := c.events[row]
	times := c.cols.OccurredAt

	past := make([]int, 0, c.Len())
	for i, t := range times {
		if t.Before(target.OccurredAt) {
			past = append(past, i)
		}
	}
	if len(past) < n {
		return Window{}, &InsufficientHistoryError{EventID: targetID, Have: len(past), Want: n}
	}

	sort.SliceStable(past, func(a, b int) bool {
		ta, tb := times[past[a]], times[past[b]]
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return c.cols.IDs[past[a]] < c.cols.IDs[past[b]]
	})

	selected := past[len(past)-n:]
	w := Window{Past: make([]Event, n), Target: target}
	for i, r := range selected {
		w.Past[i] = c.events[r]
	}
	return w, nil
}

// SpaceTimeFilter applies the distance, time and past-count stages in that
// order and returns the window for one target event.
func SpaceTimeFilter(c *Catalog, targetID string, p Params) (Window, error) {
	if err := p.Validate(); err != nil {
		return Window{}, fmt.Errorf("space-time filter: %w", err)
	}
	near, err := DistanceFilter(c, targetID, p.RadiusKm)
	if err != nil {
		return Window{}, err
	}
	recent, err := TimeFilter(near, targetID, p.PastYears)
	if err != nil {
		return Window{}, err
	}
	return PastEventsFilter(recent, targetID, p.NumEarthquakes)
}
