package domain

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

// AftershockDurationHours returns the length of the aftershock window that
// follows a trigger of the given magnitude: 10^(magnitude-3) days, in hours.
// This is an empirical approximation kept for parity with existing datasets,
// not a physical model.
func AftershockDurationHours(magnitude float64) float64 {
	return math.Pow(10, magnitude-3.0) * 24
}

// AftershockReport summarises a catalog-wide aftershock removal.
type AftershockReport struct {
	Triggers int
	Removed  int
}

// Aftershocks returns the events attributed to the trigger event: strictly
// after it, no later than the end of its aftershock window and within
// radiusKm. The trigger must reach bigEqMinMagnitude.
func Aftershocks(c *Catalog, triggerID string, radiusKm, bigEqMinMagnitude float64) (*Catalog, error) {
	row, err := c.rowOf(triggerID)
	if err != nil {
		return nil, fmt.Errorf("aftershocks: %w", err)
	}
	if mag := c.cols.Magnitude[row]; !(mag >= bigEqMinMagnitude) {
		return nil, &BelowThresholdError{EventID: triggerID, Magnitude: mag, Threshold: bigEqMinMagnitude}
	}
	keep := make([]bool, c.Len())
	markAftershocks(c.cols, row, radiusKm, keep)
	return c.Mask(keep), nil
}

// markAftershocks sets mask[i] for every aftershock of the trigger row. It
// never clears entries, so several triggers can share one mask.
func markAftershocks(cols Columns, trigger int, radiusKm float64, mask []bool) {
	start := cols.OccurredAt[trigger]
	end, bounded := aftershockEnd(start, cols.Magnitude[trigger])
	origin := Geo{Lat: cols.Lat[trigger], Lon: cols.Lon[trigger]}

	for i, t := range cols.OccurredAt {
		if mask[i] || !t.After(start) || (bounded && t.After(end)) {
			continue
		}
		if GreatCircleDistance(origin, Geo{Lat: cols.Lat[i], Lon: cols.Lon[i]}) <= radiusKm {
			mask[i] = true
		}
	}
}

// aftershockEnd adds the window, truncated to whole hours, on Unix seconds.
// Large magnitudes give windows far beyond time.Duration's range.
func aftershockEnd(start time.Time, magnitude float64) (time.Time, bool) {
	secs := math.Trunc(AftershockDurationHours(magnitude)) * 3600
	if math.IsNaN(secs) || secs >= math.MaxInt64/2 {
		return time.Time{}, false
	}
	end := time.Unix(start.Unix()+int64(secs), int64(start.Nanosecond()))
	return end.In(start.Location()), true
}

func triggerRows(cols Columns, bigEqMinMagnitude float64) []int {
	var rows []int
	for i, m := range cols.Magnitude {
		if m >= bigEqMinMagnitude {
			rows = append(rows, i)
		}
	}
	return rows
}

// RemoveAftershocks returns a new catalog without any event marked as an
// aftershock of some trigger (magnitude >= bigEqMinMagnitude). Triggers are
// kept unless another trigger marks them.
func RemoveAftershocks(c *Catalog, radiusKm, bigEqMinMagnitude float64) (*Catalog, AftershockReport) {
	triggers := triggerRows(c.cols, bigEqMinMagnitude)
	mask := make([]bool, c.Len())
	for _, row := range triggers {
		markAftershocks(c.cols, row, radiusKm, mask)
	}
	return dropMasked(c, mask, len(triggers))
}

// RemoveAftershocksParallel is RemoveAftershocks with triggers split across
// workers. Each worker accumulates its own mask; the masks are merged by
// union, so the result equals the sequential one.
func RemoveAftershocksParallel(ctx context.Context, c *Catalog, radiusKm, bigEqMinMagnitude float64, workers int) (*Catalog, AftershockReport, error) {
	if workers < 1 {
		workers = 1
	}
	triggers := triggerRows(c.cols, bigEqMinMagnitude)
	if workers > len(triggers) {
		workers = max(len(triggers), 1)
	}

	masks := make([][]bool, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		masks[w] = make([]bool, c.Len())
		g.Go(func() error {
			for i := w; i < len(triggers); i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				markAftershocks(c.cols, triggers[i], radiusKm, masks[w])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, AftershockReport{}, fmt.Errorf("remove aftershocks: %w", err)
	}

	union := masks[0]
	for _, m := range masks[1:] {
		for i, v := range m {
			union[i] = union[i] || v
		}
	}
	out, report := dropMasked(c, union, len(triggers))
	return out, report, nil
}

func dropMasked(c *Catalog, mask []bool, triggers int) (*Catalog, AftershockReport) {
	keep := make([]bool, len(mask))
	removed := 0
	for i, m := range mask {
		keep[i] = !m
		if m {
			removed++
		}
	}
	return c.Mask(keep), AftershockReport{Triggers: triggers, Removed: removed}
}
