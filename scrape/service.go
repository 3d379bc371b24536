// Package scrape coordinates a full extraction run: harvest the pages,
// split the text, extract records from every chunk and normalize prices.
package scrape

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/unscraper"
	"github.com/fwojciec/unscraper/extract"
	"github.com/google/uuid"
)

// NoDataMessage is returned when a run yields no records.
const NoDataMessage = "Could not extract any data with the specified fields"

// Ensure Service implements unscraper.Extractor.
var _ unscraper.Extractor = (*Service)(nil)

// Service runs extraction requests end to end.
type Service struct {
	Harvester unscraper.Harvester
	Provider  unscraper.CompleterProvider

	// ChunkSize is the maximum chunk length in runes.
	// Defaults to unscraper.DefaultChunkSize.
	ChunkSize int

	// MaxAttempts and Concurrency configure the extraction engine.
	MaxAttempts int
	Concurrency int

	// RPS paces completion calls per model when positive.
	RPS float64

	// NewExtractor builds the chunk extractor for a run's completer.
	// Defaults to extract.NewClient.
	NewExtractor func(unscraper.Completer) unscraper.ChunkExtractor

	Logger *slog.Logger
}

// Run validates req and executes it. Every returned error carries an
// unscraper error code; unclassified failures are reported as EINTERNAL
// with the original message.
func (s *Service) Run(ctx context.Context, req unscraper.Request) (*unscraper.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.URL = strings.TrimSpace(req.URL)

	runID := uuid.NewString()
	logger := s.logger().With("run_id", runID)

	begin := time.Now()
	result, err := s.run(ctx, req, logger)
	if err != nil {
		err = classify(err)
		logger.Error("run failed",
			"url", req.URL,
			"code", unscraper.ErrorCode(err),
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}

	result.RunID = runID
	logger.Info("run complete",
		"url", req.URL,
		"pages", result.Pages,
		"chunks", result.Chunks,
		"rows", len(result.Rows),
		"failed_chunks", len(result.Failures),
		"duration", time.Since(begin),
	)
	return result, nil
}

func (s *Service) run(ctx context.Context, req unscraper.Request, logger *slog.Logger) (*unscraper.Result, error) {
	completer, err := s.Provider.NewCompleter(ctx, req.APIKey)
	if err != nil {
		if unscraper.ErrorCode(err) == unscraper.EUNAUTHORIZED {
			return nil, err
		}
		return nil, unscraper.Errorf(unscraper.EUNAUTHORIZED, "%s", unscraper.ErrorMessage(err))
	}
	if s.RPS > 0 {
		completer = extract.NewLimitedCompleter(completer, s.RPS)
	}

	doc, err := s.Harvester.Harvest(ctx, req.URL, req.PageCount)
	if err != nil {
		return nil, err
	}
	logger.Info("harvested",
		"url", doc.URL,
		"pages", doc.Pages,
		"chars", len(doc.Text),
		"hash", doc.Hash,
	)

	chunks := unscraper.SplitText(doc.Text, s.ChunkSize)

	engine := &extract.Engine{
		Extractor:   s.newExtractor(completer),
		Models:      s.Provider.Models(),
		MaxAttempts: s.MaxAttempts,
		Concurrency: s.Concurrency,
		Logger:      logger,
	}
	outcome, err := engine.Run(ctx, chunks, req.CleanFields())
	if err != nil {
		return nil, err
	}

	if len(outcome.Records) == 0 {
		return nil, noData(outcome.Failures, len(chunks))
	}

	return &unscraper.Result{
		Rows:     unscraper.NormalizePrices(outcome.Records),
		Pages:    doc.Pages,
		Chunks:   len(chunks),
		Failures: outcome.Failures,
	}, nil
}

// noData reports an empty aggregate. When every chunk exhausted its attempts
// with the same code, that classified error is returned so rate-limit wait
// hints and outage messages reach the user. Otherwise the no-data error
// carries the failure count and the last failure message.
func noData(failures []unscraper.ChunkFailure, chunks int) error {
	if len(failures) == 0 {
		return unscraper.Errorf(unscraper.ENODATA, "%s", NoDataMessage)
	}

	last := failures[len(failures)-1].Err
	if len(failures) == chunks && sameCode(failures) {
		return unscraper.Errorf(unscraper.ErrorCode(last), "%s", unscraper.ErrorMessage(last))
	}
	return unscraper.Errorf(unscraper.ENODATA, "%s (%d of %d chunks failed: %s)",
		NoDataMessage, len(failures), chunks, unscraper.ErrorMessage(last))
}

func sameCode(failures []unscraper.ChunkFailure) bool {
	code := unscraper.ErrorCode(failures[0].Err)
	for _, f := range failures[1:] {
		if unscraper.ErrorCode(f.Err) != code {
			return false
		}
	}
	return true
}

func (s *Service) newExtractor(c unscraper.Completer) unscraper.ChunkExtractor {
	if s.NewExtractor != nil {
		return s.NewExtractor(c)
	}
	return extract.NewClient(c)
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// classify gives every error a code. Application errors pass through.
func classify(err error) error {
	var e *unscraper.Error
	if errors.As(err, &e) {
		return err
	}
	return unscraper.Errorf(unscraper.EINTERNAL, "%s", err.Error())
}
