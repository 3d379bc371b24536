package gemini

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/fwojciec/unscraper"
)

var waitRe = regexp.MustCompile(`(?i)(?:retry|try again) in ((?:\d+(?:\.\d+)?(?:ms|h|m|s))+)`)

// ClassifyError maps a Gemini API failure onto the application error codes
// using the status text genai includes in its error messages.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := err.Error()
	text := strings.ToLower(msg)
	switch {
	case strings.Contains(text, "billing") || strings.Contains(text, "insufficient_quota"):
		return unscraper.Errorf(unscraper.EQUOTA, "API quota exceeded. Please check your subscription or switch to a different API key.")
	case strings.Contains(text, "api_key_invalid") || strings.Contains(text, "api key not valid") ||
		strings.Contains(text, "permission_denied") || strings.Contains(text, "unauthenticated"):
		return unscraper.Errorf(unscraper.EUNAUTHORIZED, "Invalid API key. Please check your API key and try again.")
	case strings.Contains(text, "resource_exhausted") || strings.Contains(text, "429"):
		var wait string
		if m := waitRe.FindStringSubmatch(msg); m != nil {
			wait = m[1]
		}
		return unscraper.RateLimited(wait)
	case strings.Contains(text, "unavailable") || strings.Contains(text, "503"):
		return unscraper.Errorf(unscraper.EUNAVAILABLE, "Gemini API is temporarily unavailable. Please try again in a few minutes.")
	default:
		return unscraper.Errorf(unscraper.EPROVIDER, "API Error: %s", msg)
	}
}
