package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/unscraper"
	"github.com/fwojciec/unscraper/export"
	"github.com/fwojciec/unscraper/fs"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	ctx := deps.Ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	result, err := deps.Extractor.Run(ctx, c.request())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", unscraper.ErrorMessage(err))
		return err
	}

	if n := len(result.Failures); n > 0 {
		fmt.Fprintf(deps.Stderr, "warning: %d of %d chunks could not be extracted\n", n, result.Chunks)
		for _, f := range result.Failures {
			if f.Err != nil {
				fmt.Fprintf(deps.Stderr, "warning: chunk %d: %s\n", f.Index, unscraper.ErrorMessage(f.Err))
			}
		}
	}

	if err := c.write(deps, result.Rows); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", unscraper.ErrorMessage(err))
		return err
	}
	return nil
}

func (c *ExtractCmd) write(deps *Dependencies, rows []unscraper.Record) error {
	if c.Output == "" {
		return export.Write(deps.Stdout, c.Format, rows)
	}

	ext := c.Format
	if ext == export.FormatTable {
		ext = "txt"
	}
	path, err := fs.OutputPath(c.Output, c.URL, ext)
	if err != nil {
		return err
	}

	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(f, c.Format, rows); err != nil {
		_ = f.Abort()
		return err
	}
	if err := f.Commit(); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stderr, "wrote %d rows to %s\n", len(rows), f.Path())
	return nil
}
