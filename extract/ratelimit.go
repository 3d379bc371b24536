package extract

import (
	"context"
	"sync"

	"github.com/fwojciec/unscraper"
	"golang.org/x/time/rate"
)

var _ unscraper.Completer = (*LimitedCompleter)(nil)

// LimitedCompleter paces completion calls with a token bucket per model so
// concurrent chunks do not trip provider rate limits. Calls to different
// models proceed independently.
type LimitedCompleter struct {
	next     unscraper.Completer
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewLimitedCompleter wraps next with a limit of rps calls per second per
// model and a burst of 1.
func NewLimitedCompleter(next unscraper.Completer, rps float64) *LimitedCompleter {
	return &LimitedCompleter{
		next:     next,
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Complete waits for the model's limiter and delegates.
// Returns the context error if ctx is done before a token is available.
func (c *LimitedCompleter) Complete(ctx context.Context, req unscraper.CompletionRequest) (string, error) {
	c.mu.Lock()
	limiter, ok := c.limiters[req.Model]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(c.rps), 1)
		c.limiters[req.Model] = limiter
	}
	c.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.next.Complete(ctx, req)
}
