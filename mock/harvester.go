package mock

import (
	"context"

	"github.com/fwojciec/unscraper"
)

var _ unscraper.Harvester = (*Harvester)(nil)

// Harvester is a mock implementation of unscraper.Harvester.
type Harvester struct {
	HarvestFn func(ctx context.Context, url string, pageCount int) (*unscraper.Document, error)
}

func (h *Harvester) Harvest(ctx context.Context, url string, pageCount int) (*unscraper.Document, error) {
	return h.HarvestFn(ctx, url, pageCount)
}

var _ unscraper.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of unscraper.Extractor.
type Extractor struct {
	RunFn func(ctx context.Context, req unscraper.Request) (*unscraper.Result, error)
}

func (e *Extractor) Run(ctx context.Context, req unscraper.Request) (*unscraper.Result, error) {
	return e.RunFn(ctx, req)
}
