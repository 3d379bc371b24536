package unscraper

import (
	"net/url"
	"strconv"
	"strings"
)

// Page count bounds accepted by Request.Validate.
const (
	MinPageCount = 1
	MaxPageCount = 10
)

// Request describes a single extraction run.
type Request struct {
	// URL is the absolute http or https address of the first page.
	URL string

	// APIKey authenticates against the model provider. May be empty when the
	// provider has a configured default key.
	APIKey string

	// Fields lists the record fields the model should extract.
	Fields []string

	// PageCount is the maximum number of pages to harvest.
	PageCount int
}

// Validate returns EINVALID when the request cannot be processed.
// No network activity should happen before Validate succeeds.
func (r *Request) Validate() error {
	if !IsValidURL(r.URL) {
		return Errorf(EINVALID, "Please provide a valid URL starting with http:// or https://")
	}
	if len(cleanFields(r.Fields)) == 0 {
		return Errorf(EINVALID, "Please specify at least one field to extract")
	}
	if r.PageCount < MinPageCount || r.PageCount > MaxPageCount {
		return Errorf(EINVALID, "Page count must be between %d and %d", MinPageCount, MaxPageCount)
	}
	return nil
}

// IsValidURL reports whether s is an absolute http or https URL with a host.
func IsValidURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// ParseFields splits a comma separated field list, trimming whitespace and
// dropping empty entries.
func ParseFields(s string) []string {
	return cleanFields(strings.Split(s, ","))
}

// ParsePageCount parses a string encoded page count and checks its bounds.
func ParsePageCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < MinPageCount || n > MaxPageCount {
		return 0, Errorf(EINVALID, "Page count must be between %d and %d", MinPageCount, MaxPageCount)
	}
	return n, nil
}

// CleanFields returns the request's fields trimmed, without empty entries.
func (r *Request) CleanFields() []string {
	return cleanFields(r.Fields)
}

func cleanFields(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
