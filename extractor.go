package unscraper

import "context"

// ChunkExtractor extracts records from a single chunk with one model call.
type ChunkExtractor interface {
	// ExtractChunk returns EPARSE when the completion cannot be salvaged
	// into a listings array of objects.
	ExtractChunk(ctx context.Context, chunk Chunk, fields []string, model string) ([]Record, error)
}
