package unscraper

import "context"

// CompletionRequest is a single chat completion call.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
}

// Completer returns the text of one chat completion. Implementations
// classify provider failures into ERATELIMIT, EUNAUTHORIZED, EQUOTA,
// EUNAVAILABLE or EPROVIDER.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompleterProvider creates Completers scoped to one extraction run.
type CompleterProvider interface {
	// NewCompleter returns EUNAUTHORIZED when no usable key is available.
	NewCompleter(ctx context.Context, apiKey string) (Completer, error)

	// Models returns the ordered model rotation pool.
	Models() []string
}
