package harvest

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	urlRe   = regexp.MustCompile(`https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\\(),]|%[0-9a-fA-F][0-9a-fA-F])+`)
)

// CleanText collapses whitespace runs to a single space, removes absolute
// URLs and trims the result.
func CleanText(s string) string {
	s = spaceRe.ReplaceAllString(s, " ")
	s = urlRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ResolveHref turns a next-control href into an absolute URL. Absolute
// hrefs are returned as is; anything else is joined to the scheme and host
// of pageURL. Fragment-only and javascript: hrefs resolve to "".
func ResolveHref(pageURL, href string) string {
	href = strings.TrimSpace(href)
	lower := strings.ToLower(href)
	switch {
	case href == "", strings.HasPrefix(href, "#"), strings.HasPrefix(lower, "javascript:"):
		return ""
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return href
	}

	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/" + strings.TrimLeft(href, "/")
}
