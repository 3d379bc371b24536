// Package goquery strips page chrome from rendered listing pages with
// PuerkitoBio/goquery before they are converted to text.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/unscraper"
)

// Ensure Cleaner implements unscraper.Cleaner at compile time.
var _ unscraper.Cleaner = (*Cleaner)(nil)

// DefaultRemoveSelectors lists the elements that never carry listing data.
var DefaultRemoveSelectors = []string{
	"script",
	"style",
	"nav",
	"header",
	"footer",
	"aside",
	"iframe",
	"img",
	"picture",
	"svg",
	"video",
}

// Cleaner removes elements matching a fixed set of selectors.
type Cleaner struct {
	selector string
}

// NewCleaner returns a Cleaner that removes selectors, or
// DefaultRemoveSelectors when none are given.
func NewCleaner(selectors ...string) *Cleaner {
	if len(selectors) == 0 {
		selectors = DefaultRemoveSelectors
	}
	return &Cleaner{selector: strings.Join(selectors, ", ")}
}

// Clean returns the body markup with removable elements dropped. A document
// without a body yields its full markup.
func (c *Cleaner) Clean(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", unscraper.Errorf(unscraper.EPARSE, "failed to parse HTML: %v", err)
	}

	doc.Find(c.selector).Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Html()
	}
	return body.Html()
}
