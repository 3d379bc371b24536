package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/unscraper"
)

// Ensure LoggingChunkExtractor implements unscraper.ChunkExtractor.
var _ unscraper.ChunkExtractor = (*LoggingChunkExtractor)(nil)

// LoggingChunkExtractor wraps a ChunkExtractor with debug logging.
type LoggingChunkExtractor struct {
	next   unscraper.ChunkExtractor
	logger *slog.Logger
}

// NewLoggingChunkExtractor creates a new LoggingChunkExtractor.
func NewLoggingChunkExtractor(next unscraper.ChunkExtractor, logger *slog.Logger) *LoggingChunkExtractor {
	return &LoggingChunkExtractor{next: next, logger: logger}
}

// ExtractChunk delegates to the wrapped extractor and logs the attempt.
func (e *LoggingChunkExtractor) ExtractChunk(ctx context.Context, chunk unscraper.Chunk, fields []string, model string) (records []unscraper.Record, err error) {
	defer func(begin time.Time) {
		e.logger.Info("chunk extraction",
			"chunk", chunk.Index,
			"model", model,
			"records", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractChunk(ctx, chunk, fields, model)
}
