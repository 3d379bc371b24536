package unscraper

import (
	"context"
	"strings"
	"time"
)

// Browser opens isolated browsing sessions. Implementations share one
// browser process across sessions but never share cookies or storage.
type Browser interface {
	// NewSession opens an isolated context and a single page inside it.
	// All session operations are bound to ctx.
	NewSession(ctx context.Context, opts SessionOptions) (Session, error)
}

// Session is a single page in an isolated browser context.
type Session interface {
	// Navigate loads url and waits for DOM content to be loaded.
	Navigate(url string) error

	// Scroll dispatches one synthetic mouse wheel event.
	Scroll(dy float64) error

	// WaitIdle waits until the network has been idle, up to timeout.
	WaitIdle(timeout time.Duration) error

	// HTML returns the current rendered markup.
	HTML() (string, error)

	// URL returns the current address of the page.
	URL() (string, error)

	// Find returns the first element matching sel, giving up after timeout.
	// Any error means no match.
	Find(sel NextSelector, timeout time.Duration) (Element, error)

	// Close releases the page and its browser context.
	Close() error
}

// Element is a located page control.
type Element interface {
	// Click performs a native mouse click.
	Click() error

	// ClickScript invokes the element's click handler from script.
	ClickScript() error

	// Href returns the element's href attribute or "" when it has none.
	Href() (string, error)
}

// SessionOptions configures a new Session.
type SessionOptions struct {
	UserAgent  string
	Width      int
	Height     int
	Timeout    time.Duration
	BlockRules []BlockRule
}

// BlockRule aborts requests of a resource type. When URLContains is not
// empty the request URL must also contain one of the substrings
// (case-sensitive).
type BlockRule struct {
	ResourceType string
	URLContains  []string
}

// Match reports whether a request should be blocked by r.
func (r BlockRule) Match(resourceType, url string) bool {
	if !strings.EqualFold(r.ResourceType, resourceType) {
		return false
	}
	if len(r.URLContains) == 0 {
		return true
	}
	for _, s := range r.URLContains {
		if strings.Contains(url, s) {
			return true
		}
	}
	return false
}

// Blocked reports whether any rule matches.
func Blocked(rules []BlockRule, resourceType, url string) bool {
	for _, r := range rules {
		if r.Match(resourceType, url) {
			return true
		}
	}
	return false
}

// DefaultBlockRules drop images and third party telemetry scripts.
var DefaultBlockRules = []BlockRule{
	{ResourceType: "Image"},
	{ResourceType: "Script", URLContains: []string{"analytics", "tracking", "advertisement"}},
}
