package domain

import "time"

// FeatureCount is the width of one feature-delta row:
// magnitude, depth, X, Y, Z and elapsed hours.
const FeatureCount = 6

// Geo represents a WGS-84 latitude/longitude coordinate pair in degrees.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Position is the Cartesian projection of a Geo point, in kilometres.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Event is one catalog row describing a single seismic occurrence.
// Position is derived from Geo when the event enters a Catalog.
type Event struct {
	ID         string    `json:"id"`
	Geo        Geo       `json:"geo"`
	Magnitude  float64   `json:"magnitude"`
	DepthKm    float64   `json:"depth_km"`
	OccurredAt time.Time `json:"occurred_at"`
	Position   Position  `json:"position"`
}

// Window is the ordered output of the space-time filter: the selected past
// events, oldest first, and the target event that conceptually follows them.
type Window struct {
	Past   []Event
	Target Event
}

// Events returns the past events followed by the target.
func (w Window) Events() []Event {
	out := make([]Event, 0, len(w.Past)+1)
	out = append(out, w.Past...)
	return append(out, w.Target)
}

// Sample is one labeled training example built from a Window.
type Sample struct {
	TargetID    string                  `json:"target_id"`
	Features    [][FeatureCount]float64 `json:"features"`
	Label       int                     `json:"label"`
	Window      []string                `json:"window"`
	GeneratedAt time.Time               `json:"generated_at"`
}
