package extract

import (
	"context"
	"log/slog"

	"github.com/fwojciec/unscraper"
	"golang.org/x/sync/errgroup"
)

// Engine defaults.
const (
	DefaultMaxAttempts = 3
	DefaultConcurrency = 8
)

// Outcome is the merged result of an engine run.
type Outcome struct {
	// Records holds every record from successful chunks, in chunk order.
	Records []unscraper.Record

	// Failures lists chunks that contributed no records.
	Failures []unscraper.ChunkFailure
}

// Engine runs extraction concurrently over chunks with per-chunk retry and
// model rotation.
//
// Rate limited attempts rotate to the next model in the pool. Invalid
// credentials and exhausted quota abort the whole run. Every other failure
// retries with the same model until MaxAttempts is reached, after which the
// chunk contributes no records.
type Engine struct {
	Extractor   unscraper.ChunkExtractor
	Models      []string
	MaxAttempts int
	Concurrency int
	Logger      *slog.Logger
}

// Run extracts records from all chunks. A fatal error cancels outstanding
// chunks, discards their output and is returned as is.
func (e *Engine) Run(ctx context.Context, chunks []unscraper.Chunk, fields []string) (*Outcome, error) {
	if len(e.Models) == 0 {
		return nil, unscraper.Errorf(unscraper.EINVALID, "no models configured")
	}

	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([][]unscraper.Record, len(chunks))
	failures := make([]error, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			records, err := e.extract(gctx, chunk, fields)
			if err != nil {
				if unscraper.IsFatal(err) || gctx.Err() != nil {
					return err
				}
				failures[i] = err
				return nil
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Outcome{}
	for i := range chunks {
		out.Records = append(out.Records, results[i]...)
		if failures[i] != nil {
			out.Failures = append(out.Failures, unscraper.ChunkFailure{Index: chunks[i].Index, Err: failures[i]})
		}
	}
	return out, nil
}

// attempt is the retry state of one chunk. Each chunk owns its own copy.
type attempt struct {
	models []string
	model  int
	count  int
	last   error
}

func (a attempt) current() string {
	return a.models[a.model]
}

func (a *attempt) rotate() {
	a.model = (a.model + 1) % len(a.models)
}

func (e *Engine) extract(ctx context.Context, chunk unscraper.Chunk, fields []string) ([]unscraper.Record, error) {
	maxAttempts := e.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	st := attempt{models: e.Models}
	for st.count < maxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		model := st.current()
		records, err := e.Extractor.ExtractChunk(ctx, chunk, fields, model)
		if err == nil {
			return records, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		st.last = err
		code := unscraper.ErrorCode(err)
		e.logger().Warn("chunk attempt failed",
			"chunk", chunk.Index,
			"model", model,
			"attempt", st.count+1,
			"code", code,
			"err", unscraper.ErrorMessage(err),
		)

		switch code {
		case unscraper.EUNAUTHORIZED, unscraper.EQUOTA:
			return nil, err
		case unscraper.ERATELIMIT:
			st.rotate()
		}
		st.count++
	}
	return nil, st.last
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}
