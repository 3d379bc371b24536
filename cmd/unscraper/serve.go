package main

import (
	"fmt"
	"time"

	uhttp "github.com/fwojciec/unscraper/http"
)

// Run executes the serve command. It blocks until the context is done.
func (c *ServeCmd) Run(deps *Dependencies) error {
	opts := []uhttp.Option{
		uhttp.WithRequestLimit(c.RequestLimit, time.Minute),
		uhttp.WithLogger(deps.Logger),
	}
	if len(c.AllowOrigin) > 0 {
		opts = append(opts, uhttp.WithAllowedOrigins(c.AllowOrigin...))
	}
	srv := uhttp.NewServer(deps.Extractor, opts...)

	fmt.Fprintf(deps.Stderr, "listening on %s\n", c.Addr)
	if err := srv.ListenAndServe(deps.Ctx, c.Addr); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	return nil
}
