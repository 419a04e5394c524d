package catalogcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/quake-sample-builder/internal/domain"
)

// Write emits events under HeaderRow, formatting timestamps with layout.
func Write(w io.Writer, events []domain.Event, layout string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(HeaderRow); err != nil {
		return fmt.Errorf("write catalog header: %w", err)
	}
	for _, e := range events {
		rec := []string{
			e.ID,
			strconv.FormatFloat(e.Geo.Lat, 'f', -1, 64),
			strconv.FormatFloat(e.Geo.Lon, 'f', -1, 64),
			strconv.FormatFloat(e.Magnitude, 'f', -1, 64),
			strconv.FormatFloat(e.DepthKm, 'f', -1, 64),
			e.OccurredAt.UTC().Format(layout),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write catalog row %q: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
