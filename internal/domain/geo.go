package domain

import "math"

// EarthRadiusKm is the mean Earth radius used for projection and distances.
const EarthRadiusKm = 6371.0

// ToCartesian projects a latitude/longitude pair onto a sphere of radius
// EarthRadiusKm. The result is a proxy for 3-D displacement features, not an
// exact geodetic position.
func ToCartesian(lat, lon float64) Position {
	return ToCartesianR(lat, lon, EarthRadiusKm)
}

// ToCartesianR is ToCartesian with an explicit sphere radius.
func ToCartesianR(lat, lon, r float64) Position {
	latRad := lat * math.Pi / 180
	lonRad := lon * math.Pi / 180
	cosLat := math.Cos(latRad)
	return Position{
		X: r * cosLat * math.Cos(lonRad),
		Y: r * cosLat * math.Sin(lonRad),
		Z: r * math.Sin(latRad),
	}
}

// Displacement returns the Cartesian vector from a to b.
func Displacement(a, b Geo) Position {
	pa := ToCartesian(a.Lat, a.Lon)
	pb := ToCartesian(b.Lat, b.Lon)
	return Position{X: pb.X - pa.X, Y: pb.Y - pa.Y, Z: pb.Z - pa.Z}
}

// GreatCircleDistance returns the haversine distance between a and b in km.
func GreatCircleDistance(a, b Geo) float64 {
	return GreatCircleDistanceR(a, b, EarthRadiusKm)
}

// GreatCircleDistanceR is GreatCircleDistance on a sphere of radius r.
//
// The haversine term is clamped to [0, 1]: rounding near antipodal points can
// push it just past 1, which would make asin return NaN.
func GreatCircleDistanceR(a, b Geo, r float64) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	h = math.Max(0, math.Min(1, h))

	return 2 * r * math.Asin(math.Sqrt(h))
}
