package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/unscraper"
)

// Ensure LoggingCompleter implements unscraper.Completer.
var _ unscraper.Completer = (*LoggingCompleter)(nil)

// LoggingCompleter wraps a Completer with debug logging. Prompts are not
// logged; only their sizes are.
type LoggingCompleter struct {
	next   unscraper.Completer
	logger *slog.Logger
}

// NewLoggingCompleter creates a new LoggingCompleter.
func NewLoggingCompleter(next unscraper.Completer, logger *slog.Logger) *LoggingCompleter {
	return &LoggingCompleter{next: next, logger: logger}
}

// Complete delegates to the wrapped completer and logs the call.
func (c *LoggingCompleter) Complete(ctx context.Context, req unscraper.CompletionRequest) (out string, err error) {
	defer func(begin time.Time) {
		c.logger.Info("completion",
			"model", req.Model,
			"prompt_chars", len(req.User),
			"response_chars", len(out),
			"duration", time.Since(begin),
			"code", unscraper.ErrorCode(err),
			"err", err,
		)
	}(time.Now())
	return c.next.Complete(ctx, req)
}

// Ensure LoggingCompleterProvider implements unscraper.CompleterProvider.
var _ unscraper.CompleterProvider = (*LoggingCompleterProvider)(nil)

// LoggingCompleterProvider wraps every completer it creates with a
// LoggingCompleter.
type LoggingCompleterProvider struct {
	next   unscraper.CompleterProvider
	logger *slog.Logger
}

// NewLoggingCompleterProvider creates a new LoggingCompleterProvider.
func NewLoggingCompleterProvider(next unscraper.CompleterProvider, logger *slog.Logger) *LoggingCompleterProvider {
	return &LoggingCompleterProvider{next: next, logger: logger}
}

// NewCompleter delegates to the wrapped provider.
func (p *LoggingCompleterProvider) NewCompleter(ctx context.Context, apiKey string) (unscraper.Completer, error) {
	c, err := p.next.NewCompleter(ctx, apiKey)
	if err != nil {
		p.logger.Info("completer setup", "err", err)
		return nil, err
	}
	return NewLoggingCompleter(c, p.logger), nil
}

// Models delegates to the wrapped provider.
func (p *LoggingCompleterProvider) Models() []string {
	return p.next.Models()
}
