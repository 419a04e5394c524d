// Package domain builds labeled earthquake samples from a historical catalog.
//
// # Catalog
//
// A [Catalog] holds events in load order together with a columnar view
// ([Columns]) used by every filter. Each event's Cartesian [Position] is
// computed once, when the catalog is built:
//
//	X = R cos(lat) cos(lon)
//	Y = R cos(lat) sin(lon)
//	Z = R sin(lat)        R = 6371 km
//
// Positions only feed the displacement features; distances always use the
// haversine great-circle formula ([GreatCircleDistance]).
//
// # Windows
//
// For a target event, [SpaceTimeFilter] applies three stages in order:
//
//	distance   great-circle km <= radius (target always kept)
//	time       target - int(years*365.25*24) h <= t <= target
//	past count n most recent events with t < target, oldest first
//
// Events with equal timestamps are ordered by ID so that the selection is
// deterministic. A target with fewer than n qualifying events yields an
// [InsufficientHistoryError]; this is common near the start of a catalog and
// callers are expected to skip the target.
//
// # Samples
//
// [BuildSample] differences consecutive events of a window into rows of
//
//	[dMagnitude, dDepthKm, dX, dY, dZ, dHours]
//
// and labels the sample 1 when the target magnitude is at least the
// big-earthquake threshold. A window of n+1 events gives n rows. Time deltas
// are exact to the nanosecond and never truncated to whole days.
//
// # Aftershocks
//
// Every event at or above the threshold is a trigger. Its aftershock window
// lasts 10^(M-3) days ([AftershockDurationHours]); events strictly after the
// trigger, inside the window and within the radius are removed by
// [RemoveAftershocks]. The formula is an empirical proxy carried over from
// earlier datasets and is deliberately left unchanged.
package domain
