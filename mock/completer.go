package mock

import (
	"context"

	"github.com/fwojciec/unscraper"
)

var _ unscraper.Completer = (*Completer)(nil)

// Completer is a mock implementation of unscraper.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, req unscraper.CompletionRequest) (string, error)
}

func (c *Completer) Complete(ctx context.Context, req unscraper.CompletionRequest) (string, error) {
	return c.CompleteFn(ctx, req)
}

var _ unscraper.CompleterProvider = (*CompleterProvider)(nil)

// CompleterProvider is a mock implementation of unscraper.CompleterProvider.
type CompleterProvider struct {
	NewCompleterFn func(ctx context.Context, apiKey string) (unscraper.Completer, error)
	ModelsFn       func() []string
}

func (p *CompleterProvider) NewCompleter(ctx context.Context, apiKey string) (unscraper.Completer, error) {
	return p.NewCompleterFn(ctx, apiKey)
}

func (p *CompleterProvider) Models() []string {
	return p.ModelsFn()
}

var _ unscraper.ChunkExtractor = (*ChunkExtractor)(nil)

// ChunkExtractor is a mock implementation of unscraper.ChunkExtractor.
type ChunkExtractor struct {
	ExtractChunkFn func(ctx context.Context, chunk unscraper.Chunk, fields []string, model string) ([]unscraper.Record, error)
}

func (e *ChunkExtractor) ExtractChunk(ctx context.Context, chunk unscraper.Chunk, fields []string, model string) ([]unscraper.Record, error) {
	return e.ExtractChunkFn(ctx, chunk, fields, model)
}
