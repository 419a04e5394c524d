package pipeline

import (
	"context"

	"github.com/couchcryptid/quake-sample-builder/internal/domain"
)

// SampleTransformer implements Transformer with the domain space-time filter
// and sample extraction.
type SampleTransformer struct {
	params domain.Params
}

// NewTransformer creates a SampleTransformer for the given window parameters.
func NewTransformer(p domain.Params) *SampleTransformer {
	return &SampleTransformer{params: p}
}

func (t *SampleTransformer) Transform(ctx context.Context, c *domain.Catalog, targetID string) (domain.Sample, error) {
	if err := ctx.Err(); err != nil {
		return domain.Sample{}, err
	}
	return domain.SampleForEvent(c, targetID, t.params)
}
