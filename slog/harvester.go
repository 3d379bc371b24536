// Package slog provides logging decorators for unscraper services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/unscraper"
)

// Ensure LoggingHarvester implements unscraper.Harvester.
var _ unscraper.Harvester = (*LoggingHarvester)(nil)

// LoggingHarvester wraps a Harvester with debug logging.
type LoggingHarvester struct {
	next   unscraper.Harvester
	logger *slog.Logger
}

// NewLoggingHarvester creates a new LoggingHarvester.
func NewLoggingHarvester(next unscraper.Harvester, logger *slog.Logger) *LoggingHarvester {
	return &LoggingHarvester{next: next, logger: logger}
}

// Harvest delegates to the wrapped harvester and logs the operation.
func (h *LoggingHarvester) Harvest(ctx context.Context, url string, pageCount int) (doc *unscraper.Document, err error) {
	defer func(begin time.Time) {
		var pages, chars int
		if doc != nil {
			pages, chars = doc.Pages, len(doc.Text)
		}
		h.logger.Info("harvest",
			"url", url,
			"requested", pageCount,
			"pages", pages,
			"chars", chars,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return h.next.Harvest(ctx, url, pageCount)
}
