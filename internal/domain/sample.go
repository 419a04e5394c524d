package domain

import (
	"fmt"
)

// LabelFor returns 1 when magnitude reaches the big-earthquake threshold.
// The boundary is inclusive.
func LabelFor(magnitude, bigEqMinMagnitude float64) int {
	if magnitude >= bigEqMinMagnitude {
		return 1
	}
	return 0
}

// HoursBetween returns the signed elapsed time from a to b in hours.
// Seconds and nanoseconds are differenced separately so that spans beyond
// time.Duration's range stay exact.
func HoursBetween(a, b Event) float64 {
	secs := float64(b.OccurredAt.Unix() - a.OccurredAt.Unix())
	nanos := float64(b.OccurredAt.Nanosecond() - a.OccurredAt.Nanosecond())
	return (secs + nanos/1e9) / 3600
}

// FeatureDelta returns [dMagnitude, dDepth, dX, dY, dZ, dHours] from a to b.
func FeatureDelta(a, b Event) [FeatureCount]float64 {
	return [FeatureCount]float64{
		b.Magnitude - a.Magnitude,
		b.DepthKm - a.DepthKm,
		b.Position.X - a.Position.X,
		b.Position.Y - a.Position.Y,
		b.Position.Z - a.Position.Z,
		HoursBetween(a, b),
	}
}

// BuildSample differences each consecutive pair of the window (past events
// oldest first, target last) and labels the result from the target's
// magnitude. NaN and Inf values in the inputs are carried into the matrix
// unchanged; equal timestamps yield a zero time delta and are legal.
func BuildSample(window []Event, bigEqMinMagnitude float64) (Sample, error) {
	if len(window) < 2 {
		return Sample{}, fmt.Errorf("build sample: window needs at least 2 events, got %d", len(window))
	}
	for i, e := range window {
		if e.OccurredAt.IsZero() {
			return Sample{}, &MalformedTimestampError{EventID: e.ID, Reason: "missing timestamp"}
		}
		if i > 0 && e.OccurredAt.Before(window[i-1].OccurredAt) {
			return Sample{}, outOfOrder(window[i-1], e)
		}
	}

	target := window[len(window)-1]
	s := Sample{
		TargetID:    target.ID,
		Features:    make([][FeatureCount]float64, len(window)-1),
		Label:       LabelFor(target.Magnitude, bigEqMinMagnitude),
		Window:      make([]string, len(window)),
		GeneratedAt: clock.Now(),
	}
	for i := range s.Features {
		s.Features[i] = FeatureDelta(window[i], window[i+1])
	}
	for i, e := range window {
		s.Window[i] = e.ID
	}
	return s, nil
}

// SampleForEvent runs the space-time filter for targetID and builds its
// sample.
func SampleForEvent(c *Catalog, targetID string, p Params) (Sample, error) {
	w, err := SpaceTimeFilter(c, targetID, p)
	if err != nil {
		return Sample{}, err
	}
	return BuildSample(w.Events(), p.BigEqMinMagnitude)
}
