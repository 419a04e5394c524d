package domain

import "math"

// Weights scales each term of EventDistance.
type Weights struct {
	Magnitude float64
	Depth     float64
	Distance  float64
	Time      float64
}

// EventDistance is a weighted dissimilarity between two events, used when
// tuning sampling parameters by hand: absolute magnitude and depth
// differences, great-circle km and absolute elapsed hours, each multiplied by
// its weight and summed.
func EventDistance(a, b Event, w Weights) float64 {
	return math.Abs(a.Magnitude-b.Magnitude)*w.Magnitude +
		math.Abs(a.DepthKm-b.DepthKm)*w.Depth +
		GreatCircleDistance(a.Geo, b.Geo)*w.Distance +
		math.Abs(HoursBetween(a, b))*w.Time
}

// EventDistanceByID resolves both IDs in the catalog before computing
// EventDistance.
func EventDistanceByID(c *Catalog, idA, idB string, w Weights) (float64, error) {
	a, err := c.Lookup(idA)
	if err != nil {
		return 0, err
	}
	b, err := c.Lookup(idB)
	if err != nil {
		return 0, err
	}
	return EventDistance(a, b, w), nil
}
