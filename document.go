package unscraper

import "context"

// Document is the cleaned text harvested from one or more pages of a URL.
type Document struct {
	// URL is the address the harvest started from.
	URL string `json:"url"`

	// Text is whitespace collapsed with absolute URLs removed.
	Text string `json:"text"`

	// Pages is the number of pages actually collected.
	Pages int `json:"pages"`

	// Hash fingerprints Text for log correlation.
	Hash string `json:"hash"`
}

// Harvester collects the text of up to pageCount paginated views of a URL.
type Harvester interface {
	// Harvest returns EFETCH when the first page cannot be loaded.
	// Failures on later pages end pagination without an error.
	Harvest(ctx context.Context, url string, pageCount int) (*Document, error)
}
