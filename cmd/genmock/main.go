// Command genmock writes a deterministic synthetic earthquake catalog as CSV.
// Background events follow a Gutenberg-Richter magnitude distribution; a few
// large main shocks are each followed by a decaying aftershock sequence. The
// catalog is then run through the domain package so the printed stats match
// real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/catalog.csv -events 2000 -seed 7
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/quake-sample-builder/internal/adapter/catalogcsv"
	"github.com/couchcryptid/quake-sample-builder/internal/config"
	"github.com/couchcryptid/quake-sample-builder/internal/domain"
)

var startDate = time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)

// region is a rectangle in degrees that events are scattered over.
type region struct {
	minLat, maxLat float64
	minLon, maxLon float64
}

var japan = region{minLat: 33, maxLat: 37, minLon: 137, maxLon: 142}

// maxSequenceHours caps synthetic aftershock sequences at two years.
const maxSequenceHours = 2 * 365 * 24

type genOptions struct {
	events      int
	mainShocks  int
	aftershocks int
	years       float64
	seed        uint64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the catalog CSV")
	events := flag.Int("events", 2000, "number of background events")
	mainShocks := flag.Int("main-shocks", 5, "number of M6+ main shocks")
	aftershocks := flag.Int("aftershocks", 40, "aftershocks per main shock")
	years := flag.Float64("years", 30, "catalog span in years")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	catalog := generate(genOptions{
		events:      *events,
		mainShocks:  *mainShocks,
		aftershocks: *aftershocks,
		years:       *years,
		seed:        *seed,
	})

	if err := writeCatalog(*out, catalog); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	log.Printf("wrote catalog: %s (%d events)", *out, len(catalog))

	printStats(domain.NewCatalog(catalog))
	return nil
}

// generate returns events sorted by time with IDs assigned in that order.
func generate(opts genOptions) []domain.Event {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	span := time.Duration(opts.years * 365.25 * 24 * float64(time.Hour))

	events := make([]domain.Event, 0, opts.events+opts.mainShocks*(opts.aftershocks+1))
	for range opts.events {
		events = append(events, domain.Event{
			Geo:        randomGeo(rng, japan),
			Magnitude:  gutenbergRichter(rng, 2.5, 1.0, 5.9),
			DepthKm:    round(1+rng.Float64()*80, 1),
			OccurredAt: startDate.Add(time.Duration(rng.Int64N(int64(span)))).Truncate(time.Second),
		})
	}

	for range opts.mainShocks {
		shock := domain.Event{
			Geo:        randomGeo(rng, japan),
			Magnitude:  round(6.0+rng.Float64()*1.5, 1),
			DepthKm:    round(5+rng.Float64()*40, 1),
			OccurredAt: startDate.Add(time.Duration(rng.Int64N(int64(span)))).Truncate(time.Second),
		}
		events = append(events, shock)
		events = append(events, aftershockSequence(rng, shock, opts.aftershocks)...)
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].OccurredAt.Before(events[j].OccurredAt) })
	for i := range events {
		events[i].ID = fmt.Sprintf("eq%06d", i+1)
	}
	return events
}

// aftershockSequence scatters n events within 5 km of the main shock, with
// delays that thin out over time (Omori-like) and magnitudes below it.
func aftershockSequence(rng *rand.Rand, shock domain.Event, n int) []domain.Event {
	window := domain.AftershockDurationHours(shock.Magnitude)
	out := make([]domain.Event, 0, n)
	for range n {
		hours := math.Pow(rng.Float64(), 3) * math.Min(window, maxSequenceHours)
		bearing := rng.Float64() * 2 * math.Pi
		distKm := rng.Float64() * 5
		geo := domain.Geo{
			Lat: shock.Geo.Lat + distKm/111.0*math.Cos(bearing),
			Lon: shock.Geo.Lon + distKm/(111.0*math.Cos(shock.Geo.Lat*math.Pi/180))*math.Sin(bearing),
		}
		out = append(out, domain.Event{
			Geo:        geo,
			Magnitude:  math.Min(gutenbergRichter(rng, 2.5, 1.0, 9), round(shock.Magnitude-0.5, 1)),
			DepthKm:    round(math.Max(1, shock.DepthKm+rng.NormFloat64()*3), 1),
			OccurredAt: shock.OccurredAt.Add(time.Duration((1 + hours) * float64(time.Hour))).Truncate(time.Second),
		})
	}
	return out
}

// gutenbergRichter samples a magnitude above minMag with slope b, capped at maxMag.
func gutenbergRichter(rng *rand.Rand, minMag, b, maxMag float64) float64 {
	u := 1 - rng.Float64() // (0, 1]
	return round(math.Min(minMag-math.Log10(u)/b, maxMag), 1)
}

func randomGeo(rng *rand.Rand, r region) domain.Geo {
	return domain.Geo{
		Lat: round(r.minLat+rng.Float64()*(r.maxLat-r.minLat), 4),
		Lon: round(r.minLon+rng.Float64()*(r.maxLon-r.minLon), 4),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func writeCatalog(path string, events []domain.Event) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := catalogcsv.Write(f, events, config.DefaultCatalogTimeLayout); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printStats(c *domain.Catalog) {
	p := domain.DefaultParams()

	bands := map[string]int{}
	for _, m := range c.Columns().Magnitude {
		switch {
		case m >= 6:
			bands["6+"]++
		case m >= p.BigEqMinMagnitude:
			bands["5.5-6"]++
		case m >= 4:
			bands["4-5.5"]++
		default:
			bands["<4"]++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", c.Len())
	fmt.Printf("By magnitude: <4=%d, 4-5.5=%d, 5.5-6=%d, 6+=%d\n",
		bands["<4"], bands["4-5.5"], bands["5.5-6"], bands["6+"])

	cleaned, report := domain.RemoveAftershocks(c, p.RadiusKm, p.BigEqMinMagnitude)
	fmt.Printf("Aftershock triggers: %d, removed: %d, remaining: %d\n",
		report.Triggers, report.Removed, cleaned.Len())

	skipped := map[string]int{}
	var built, positives int
	for _, id := range c.Columns().IDs {
		s, err := domain.SampleForEvent(c, id, p)
		if err != nil {
			skipped[domain.SkipReason(err)]++
			continue
		}
		built++
		positives += s.Label
	}
	fmt.Printf("Samples with default params: built=%d, positives=%d, skipped=%v\n", built, positives, skipped)
}
