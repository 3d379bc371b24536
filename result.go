package unscraper

import "context"

// Result is the outcome of a successful extraction run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Rows holds the extracted records with prices normalized.
	Rows []Record

	// Pages is the number of pages harvested.
	Pages int

	// Chunks is the number of chunks the harvested text was split into.
	Chunks int

	// Failures lists chunks that contributed no records.
	Failures []ChunkFailure
}

// ChunkFailure records a chunk that exhausted its extraction attempts.
type ChunkFailure struct {
	Index int
	Err   error
}

// Extractor runs a complete extraction request.
type Extractor interface {
	// Run returns an error carrying one of the package error codes.
	// Requests failing Validate are rejected before any network activity.
	Run(ctx context.Context, req Request) (*Result, error)
}
