package unscraper

// NextSelector locates a "next page" control. CSS selects candidate
// elements. When Text is set the candidate's visible text must also match
// it: "/pattern/flags" is a JavaScript regular expression, anything else is
// a literal substring.
type NextSelector struct {
	CSS  string
	Text string
}

func (s NextSelector) String() string {
	if s.Text == "" {
		return s.CSS
	}
	return s.CSS + " ~ " + s.Text
}

// DefaultNextSelectors is the ordered probe list for next-page controls.
// The first selector that matches wins.
var DefaultNextSelectors = []NextSelector{
	{CSS: `button[aria-label*="next" i]`},
	{CSS: `button`, Text: `/next/i`},
	{CSS: `a[rel="next"]`},
	{CSS: `a[aria-label*="next" i]`},
	{CSS: `a`, Text: `/next/i`},
	{CSS: `a[class*="next"]`},
	{CSS: `a.next`},
	{CSS: `.next a`},
	{CSS: `[class*="pagination"] [class*="next"]`},
	{CSS: `[class*="pager"] [class*="next"]`},
	{CSS: `[class*="paginate"] [class*="next"]`},
	{CSS: `li.next a`},
	{CSS: `.pagination-next`},
	{CSS: `[aria-label="Next page"]`},
	{CSS: `[aria-label="next page"]`},
	{CSS: `input[value="Next"]`},
	{CSS: `input[value="next"]`},
	{CSS: `span[class*="next"]`},
	{CSS: `div[class*="next"]`},
}

// NextTextFallback is tried after DefaultNextSelectors: any element on the
// page whose text contains "next", ignoring case. Browsers resolve it to
// the innermost match so wrappers around the control are skipped.
var NextTextFallback = NextSelector{
	CSS:  `body *`,
	Text: `/next/i`,
}
