package domain

import "time"

var baseTime = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func quake(id string, lat, lon, mag float64, at time.Time) Event {
	return Event{
		ID:         id,
		Geo:        Geo{Lat: lat, Lon: lon},
		Magnitude:  mag,
		DepthKm:    10,
		OccurredAt: at,
	}
}

func hoursAfter(h float64) time.Time {
	return baseTime.Add(time.Duration(h * float64(time.Hour)))
}

func ids(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

// history returns n events one hour apart at the same location, ending one
// hour before baseTime, followed by a target at baseTime.
func history(n int, targetMag float64) []Event {
	events := make([]Event, 0, n+1)
	for i := range n {
		events = append(events, quake(
			string(rune('a'+i%26))+string(rune('0'+i/26)),
			35.0, 139.0, 3.0+float64(i%10)/10,
			hoursAfter(float64(i-n)),
		))
	}
	return append(events, quake("target", 35.0, 139.0, targetMag, baseTime))
}
