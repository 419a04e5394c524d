package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Field names a numeric catalog column.
type Field int

const (
	FieldLatitude Field = iota
	FieldLongitude
	FieldMagnitude
	FieldDepth
	FieldX
	FieldY
	FieldZ
)

func (f Field) String() string {
	switch f {
	case FieldLatitude:
		return "latitude"
	case FieldLongitude:
		return "longitude"
	case FieldMagnitude:
		return "magnitude"
	case FieldDepth:
		return "depth_km"
	case FieldX:
		return "x"
	case FieldY:
		return "y"
	case FieldZ:
		return "z"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Columns is a structure-of-arrays view of a catalog. Index i of every slice
// refers to row i of the catalog, in catalog order.
type Columns struct {
	IDs        []string
	Lat        []float64
	Lon        []float64
	Magnitude  []float64
	Depth      []float64
	X          []float64
	Y          []float64
	Z          []float64
	OccurredAt []time.Time
}

// Catalog is an ordered, read-only collection of events indexed by ID.
//
// Duplicate IDs are kept as loaded so the catalog mirrors its source, but any
// lookup of a duplicated ID fails with ErrAmbiguousID. Filters return new
// catalogs; a Catalog is never modified after construction and is safe for
// concurrent readers.
type Catalog struct {
	events []Event
	cols   Columns
	index  map[string][]int
}

// NewCatalog copies events into a new catalog, computing each event's
// Cartesian position once.
func NewCatalog(events []Event) *Catalog {
	rows := make([]Event, len(events))
	for i, e := range events {
		e.Position = ToCartesian(e.Geo.Lat, e.Geo.Lon)
		rows[i] = e
	}
	return newCatalog(rows)
}

// newCatalog takes ownership of rows whose positions are already computed.
func newCatalog(rows []Event) *Catalog {
	n := len(rows)
	c := &Catalog{
		events: rows,
		cols: Columns{
			IDs:        make([]string, n),
			Lat:        make([]float64, n),
			Lon:        make([]float64, n),
			Magnitude:  make([]float64, n),
			Depth:      make([]float64, n),
			X:          make([]float64, n),
			Y:          make([]float64, n),
			Z:          make([]float64, n),
			OccurredAt: make([]time.Time, n),
		},
		index: make(map[string][]int, n),
	}
	for i, e := range rows {
		c.cols.IDs[i] = e.ID
		c.cols.Lat[i] = e.Geo.Lat
		c.cols.Lon[i] = e.Geo.Lon
		c.cols.Magnitude[i] = e.Magnitude
		c.cols.Depth[i] = e.DepthKm
		c.cols.X[i] = e.Position.X
		c.cols.Y[i] = e.Position.Y
		c.cols.Z[i] = e.Position.Z
		c.cols.OccurredAt[i] = e.OccurredAt
		c.index[e.ID] = append(c.index[e.ID], i)
	}
	return c
}

// Len returns the number of rows.
func (c *Catalog) Len() int { return len(c.events) }

// At returns row i.
func (c *Catalog) At(i int) Event { return c.events[i] }

// Events returns a copy of the rows in catalog order.
func (c *Catalog) Events() []Event {
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Columns returns the columnar view in current row order. Callers must not
// modify the returned slices.
func (c *Catalog) Columns() Columns { return c.cols }

// Lookup resolves exactly one row by ID.
func (c *Catalog) Lookup(id string) (Event, error) {
	i, err := c.rowOf(id)
	if err != nil {
		return Event{}, err
	}
	return c.events[i], nil
}

// ValueOf returns a numeric field of the single row with the given ID.
func (c *Catalog) ValueOf(id string, field Field) (float64, error) {
	i, err := c.rowOf(id)
	if err != nil {
		return 0, err
	}
	switch field {
	case FieldLatitude:
		return c.cols.Lat[i], nil
	case FieldLongitude:
		return c.cols.Lon[i], nil
	case FieldMagnitude:
		return c.cols.Magnitude[i], nil
	case FieldDepth:
		return c.cols.Depth[i], nil
	case FieldX:
		return c.cols.X[i], nil
	case FieldY:
		return c.cols.Y[i], nil
	case FieldZ:
		return c.cols.Z[i], nil
	default:
		return 0, fmt.Errorf("value of %q: unknown %s", id, field)
	}
}

func (c *Catalog) rowOf(id string) (int, error) {
	rows := c.index[id]
	if len(rows) != 1 {
		return 0, &LookupError{EventID: id, Matches: len(rows)}
	}
	return rows[0], nil
}

// Subset returns a new catalog holding the given rows in the given order.
func (c *Catalog) Subset(rows []int) *Catalog {
	out := make([]Event, len(rows))
	for i, r := range rows {
		out[i] = c.events[r]
	}
	return newCatalog(out)
}

// Mask returns a new catalog holding the rows where keep is true, in order.
func (c *Catalog) Mask(keep []bool) *Catalog {
	rows := make([]int, 0, len(keep))
	for i, k := range keep {
		if k {
			rows = append(rows, i)
		}
	}
	return c.Subset(rows)
}

// MinMagnitude returns the events with magnitude >= m.
func (c *Catalog) MinMagnitude(m float64) *Catalog {
	keep := make([]bool, c.Len())
	for i, mag := range c.cols.Magnitude {
		keep[i] = mag >= m
	}
	return c.Mask(keep)
}

// DuplicateIDs returns the IDs that occur more than once, sorted.
func (c *Catalog) DuplicateIDs() []string {
	var dups []string
	for id, rows := range c.index {
		if len(rows) > 1 {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups)
	return dups
}

// Validate reports duplicate IDs and rows without a timestamp.
func (c *Catalog) Validate() error {
	var errs []error
	for _, id := range c.DuplicateIDs() {
		errs = append(errs, &LookupError{EventID: id, Matches: len(c.index[id])})
	}
	for _, e := range c.events {
		if e.OccurredAt.IsZero() {
			errs = append(errs, &MalformedTimestampError{EventID: e.ID, Reason: "missing timestamp"})
		}
	}
	return errors.Join(errs...)
}
