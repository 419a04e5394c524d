package pipeline

import "github.com/couchcryptid/quake-sample-builder/internal/domain"

// Result is the outcome of extracting one target's sample. Exactly one of
// Sample and Err is meaningful.
type Result struct {
	TargetID string
	Sample   domain.Sample
	Err      error
}

func (r Result) OK() bool { return r.Err == nil }

// Batch holds successful samples as float32 tensors ready for a trainer:
// X has shape [samples][rows][FeatureCount] and Y has one label per sample.
type Batch struct {
	IDs []string
	X   [][][domain.FeatureCount]float32
	Y   []float32
}

func (b Batch) Len() int { return len(b.Y) }

// Positives counts samples labeled as big earthquakes.
func (b Batch) Positives() int {
	n := 0
	for _, y := range b.Y {
		if y > 0 {
			n++
		}
	}
	return n
}

// Stack converts the successful results into a Batch, preserving order.
// Failed results are left out.
func Stack(results []Result) Batch {
	var b Batch
	for _, r := range results {
		if !r.OK() {
			continue
		}
		rows := make([][domain.FeatureCount]float32, len(r.Sample.Features))
		for i, f := range r.Sample.Features {
			for j, v := range f {
				rows[i][j] = float32(v)
			}
		}
		b.IDs = append(b.IDs, r.TargetID)
		b.X = append(b.X, rows)
		b.Y = append(b.Y, float32(r.Sample.Label))
	}
	return b
}
