package mock

import "github.com/fwojciec/unscraper"

var _ unscraper.Cleaner = (*Cleaner)(nil)

// Cleaner is a mock implementation of unscraper.Cleaner.
type Cleaner struct {
	CleanFn func(html string) (string, error)
}

func (c *Cleaner) Clean(html string) (string, error) {
	return c.CleanFn(html)
}

var _ unscraper.Converter = (*Converter)(nil)

// Converter is a mock implementation of unscraper.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
