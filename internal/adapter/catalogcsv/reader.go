// Package catalogcsv reads and writes earthquake catalogs stored as CSV.
//
// The header row names the columns; order is free and matching is
// case-insensitive. Recognised names:
//
//	id         Event ID, event_id, id
//	latitude   Latitude, lat
//	longitude  Longitude, lon
//	magnitude  xM, magnitude, mag
//	depth      Depth(km), depth_km, depth
//	time       Datetime, occurred_at, time
package catalogcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-sample-builder/internal/domain"
)

// HeaderRow is the header written by Write.
var HeaderRow = []string{"Event ID", "Latitude", "Longitude", "xM", "Depth(km)", "Datetime"}

const (
	colID = iota
	colLat
	colLon
	colMag
	colDepth
	colTime
	numCols
)

var colNames = [numCols]string{"id", "latitude", "longitude", "magnitude", "depth", "time"}

var aliases = [numCols][]string{
	colID:    {"event id", "event_id", "id"},
	colLat:   {"latitude", "lat"},
	colLon:   {"longitude", "lon"},
	colMag:   {"xm", "magnitude", "mag"},
	colDepth: {"depth(km)", "depth_km", "depth"},
	colTime:  {"datetime", "occurred_at", "time"},
}

// RowError describes a data row that could not be turned into an event.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// ReadFile opens path and calls Read.
func ReadFile(path, layout string) (*domain.Catalog, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Read(f, layout)
}

// Read parses a catalog. Rows that fail to parse are left out of the catalog
// and returned as *RowError values; the final error is reserved for problems
// that make the whole input unusable (I/O, missing columns).
func Read(r io.Reader, layout string) (*domain.Catalog, []error, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		events  []domain.Event
		rowErrs []error
	)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read catalog: %w", err)
		}
		event, err := parseRow(row, idx, layout)
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Line: line, Err: err})
			continue
		}
		events = append(events, event)
	}
	return domain.NewCatalog(events), rowErrs, nil
}

func columnIndex(header []string) ([numCols]int, error) {
	var idx [numCols]int
	for c := range idx {
		idx[c] = -1
	}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for c, names := range aliases {
			if idx[c] >= 0 {
				continue
			}
			for _, alias := range names {
				if name == alias {
					idx[c] = i
				}
			}
		}
	}
	var missing []string
	for c, i := range idx {
		if i < 0 {
			missing = append(missing, colNames[c])
		}
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("catalog header missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(row []string, idx [numCols]int, layout string) (domain.Event, error) {
	get := func(c int) string {
		if idx[c] >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx[c]])
	}

	id := get(colID)
	if id == "" {
		return domain.Event{}, errors.New("empty event id")
	}

	var errs []error
	num := func(c int) float64 {
		v, err := strconv.ParseFloat(get(c), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("event %q: %s: %w", id, colNames[c], err))
		}
		return v
	}
	event := domain.Event{
		ID:        id,
		Geo:       domain.Geo{Lat: num(colLat), Lon: num(colLon)},
		Magnitude: num(colMag),
		DepthKm:   num(colDepth),
	}

	raw := get(colTime)
	at, err := parseTime(raw, layout)
	if err != nil {
		errs = append(errs, &domain.MalformedTimestampError{EventID: id, Value: raw, Reason: err.Error()})
	}
	event.OccurredAt = at

	if len(errs) > 0 {
		return domain.Event{}, errors.Join(errs...)
	}
	return event, nil
}

// parseTime tries the configured layout first, then RFC 3339. Times without
// a zone are read as UTC.
func parseTime(s, layout string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	t, err := time.Parse(layout, s)
	if err == nil {
		return t, nil
	}
	if t2, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
		return t2, nil
	}
	return time.Time{}, err
}
