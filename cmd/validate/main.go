// Command validate performs integrity checks on an earthquake catalog and,
// optionally, on a JSON-lines file of samples generated from it. It verifies
// that rows parse, IDs are unique, values are in range, every extracted
// sample is well formed, and that stored samples match a fresh extraction.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -catalog data/mock/catalog.csv \
//	  -samples data/mock/samples.jsonl \
//	  -radius-km 10 -past-years 30 -num-earthquakes 30 -big-eq 5.5
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/quake-sample-builder/internal/adapter/catalogcsv"
	"github.com/couchcryptid/quake-sample-builder/internal/config"
	"github.com/couchcryptid/quake-sample-builder/internal/domain"
)

// featureTolerance is the absolute difference allowed between a stored
// feature and a recomputed one.
const featureTolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	defaults := domain.DefaultParams()
	catalogPath := flag.String("catalog", "", "path to the catalog CSV")
	layout := flag.String("layout", config.DefaultCatalogTimeLayout, "timestamp layout of the catalog")
	samplesPath := flag.String("samples", "", "optional JSON-lines file of generated samples")
	radiusKm := flag.Float64("radius-km", defaults.RadiusKm, "neighbourhood radius in km")
	pastYears := flag.Float64("past-years", defaults.PastYears, "lookback in years")
	numEQ := flag.Int("num-earthquakes", defaults.NumEarthquakes, "past events per sample")
	bigEq := flag.Float64("big-eq", defaults.BigEqMinMagnitude, "magnitude labeled as a big earthquake")
	flag.Parse()

	if *catalogPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	params := domain.Params{
		RadiusKm:          *radiusKm,
		PastYears:         *pastYears,
		NumEarthquakes:    *numEQ,
		BigEqMinMagnitude: *bigEq,
	}
	if err := params.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	if code := run(*catalogPath, *layout, *samplesPath, params); code != 0 {
		os.Exit(code)
	}
}

func run(catalogPath, layout, samplesPath string, params domain.Params) int {
	// ── Load data sources ──
	fmt.Println("=== Earthquake Catalog Integrity Validation ===")
	fmt.Println()

	catalog, rowErrs, err := catalogcsv.ReadFile(catalogPath, layout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load catalog: %v\n", err)
		return 1
	}

	var samples []domain.Sample
	if samplesPath != "" {
		samples, err = loadSamples(samplesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load samples: %v\n", err)
			return 1
		}
	}

	// ── Run validation phases ──
	phases := []*phase{
		validateRows(rowErrs),
		validateCatalog(catalog),
		validateExtraction(catalog, params),
	}
	if samplesPath != "" {
		phases = append(phases, validateStoredSamples(catalog, samples, params))
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d catalog events, %d bad rows, %d stored samples\n",
		catalog.Len(), len(rowErrs), len(samples))

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadSamples(path string) ([]domain.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var samples []domain.Sample
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var s domain.Sample
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, s)
	}
	return samples, scanner.Err()
}

// ── Phase 1: Row Parsing ──
// Every CSV data row should become an event.

func validateRows(rowErrs []error) *phase {
	p := &phase{name: "Phase 1: Row Parsing (CSV)"}
	for _, err := range rowErrs {
		p.errorf("%v", err)
	}
	return p
}

// ── Phase 2: Catalog Integrity ──
// Unique IDs, timestamps present, coordinates and magnitudes in range.

func validateCatalog(c *domain.Catalog) *phase {
	p := &phase{name: "Phase 2: Catalog Integrity"}

	for _, id := range c.DuplicateIDs() {
		p.errorf("event ID %q appears more than once", id)
	}

	cols := c.Columns()
	for i, id := range cols.IDs {
		if cols.OccurredAt[i].IsZero() {
			p.errorf("%s: missing timestamp", id)
		}
		if !inRange(cols.Lat[i], -90, 90) {
			p.errorf("%s: latitude %g out of range", id, cols.Lat[i])
		}
		if !inRange(cols.Lon[i], -180, 180) {
			p.errorf("%s: longitude %g out of range", id, cols.Lon[i])
		}
		if !inRange(cols.Magnitude[i], -2, 10) {
			p.errorf("%s: magnitude %g out of range", id, cols.Magnitude[i])
		}
		if !inRange(cols.Depth[i], -10, 800) {
			p.errorf("%s: depth %g km out of range", id, cols.Depth[i])
		}
	}
	return p
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// ── Phase 3: Sample Extraction ──
// Every event either yields a well-formed sample or is skipped for lack of
// history. Any other failure points at bad data.

func validateExtraction(c *domain.Catalog, params domain.Params) *phase {
	p := &phase{name: "Phase 3: Sample Extraction"}

	built, skipped := 0, 0
	for i := range c.Len() {
		target := c.At(i)
		s, err := domain.SampleForEvent(c, target.ID, params)
		switch {
		case errors.Is(err, domain.ErrInsufficientHistory):
			skipped++
			continue
		case errors.Is(err, domain.ErrAmbiguousID):
			// Already reported by phase 2.
			continue
		case err != nil:
			p.errorf("%s: %v", target.ID, err)
			continue
		}
		built++
		checkSample(p, s, target, params)
	}
	fmt.Printf("Extraction: %d built, %d skipped for insufficient history\n", built, skipped)
	return p
}

func checkSample(p *phase, s domain.Sample, target domain.Event, params domain.Params) {
	if len(s.Features) != params.NumEarthquakes {
		p.errorf("%s: %d feature rows, want %d", target.ID, len(s.Features), params.NumEarthquakes)
	}
	if len(s.Window) != params.NumEarthquakes+1 || s.Window[len(s.Window)-1] != target.ID {
		p.errorf("%s: window %v does not end with the target", target.ID, s.Window)
	}
	if want := domain.LabelFor(target.Magnitude, params.BigEqMinMagnitude); s.Label != want {
		p.errorf("%s: label %d, want %d", target.ID, s.Label, want)
	}
	for i, f := range s.Features {
		if hours := f[domain.FeatureCount-1]; hours < 0 {
			p.errorf("%s: row %d has negative time delta %g", target.ID, i, hours)
		}
	}
}

// ── Phase 4: Stored Samples ──
// Samples on disk should match a fresh extraction from the catalog.

func validateStoredSamples(c *domain.Catalog, samples []domain.Sample, params domain.Params) *phase {
	p := &phase{name: "Phase 4: Stored Samples (JSONL vs catalog)"}

	seen := make(map[string]bool, len(samples))
	for _, stored := range samples {
		if seen[stored.TargetID] {
			p.errorf("%s: sample stored more than once", stored.TargetID)
			continue
		}
		seen[stored.TargetID] = true

		fresh, err := domain.SampleForEvent(c, stored.TargetID, params)
		if err != nil {
			p.errorf("%s: cannot re-extract: %v", stored.TargetID, err)
			continue
		}
		compareSamples(p, stored, fresh)
	}
	return p
}

func compareSamples(p *phase, stored, fresh domain.Sample) {
	id := stored.TargetID
	if stored.Label != fresh.Label {
		p.errorf("%s: label stored=%d, fresh=%d", id, stored.Label, fresh.Label)
	}
	if len(stored.Features) != len(fresh.Features) {
		p.errorf("%s: rows stored=%d, fresh=%d", id, len(stored.Features), len(fresh.Features))
		return
	}
	for i := range stored.Features {
		for j := range stored.Features[i] {
			if math.Abs(stored.Features[i][j]-fresh.Features[i][j]) > featureTolerance {
				p.errorf("%s: feature [%d][%d] stored=%g, fresh=%g",
					id, i, j, stored.Features[i][j], fresh.Features[i][j])
			}
		}
	}
	for i := range min(len(stored.Window), len(fresh.Window)) {
		if stored.Window[i] != fresh.Window[i] {
			p.errorf("%s: window[%d] stored=%s, fresh=%s", id, i, stored.Window[i], fresh.Window[i])
			break
		}
	}
}
