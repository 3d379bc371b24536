package groq

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/fwojciec/unscraper"
	"github.com/openai/openai-go/v3"
)

// waitRe finds the suggested wait in messages such as
// "Please try again in 7m12.48s.".
var waitRe = regexp.MustCompile(`(?i)try again in ((?:\d+(?:\.\d+)?(?:ms|h|m|s))+)`)

// ClassifyError maps a Groq API failure onto the application error codes.
// Context errors are returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var (
		status  int
		code    string
		message string
	)
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
		code = apiErr.Code
		message = apiErr.Message
	}
	text := strings.ToLower(err.Error() + " " + code + " " + message)
	if message == "" {
		message = err.Error()
	}

	switch {
	case strings.Contains(text, "insufficient_quota"):
		return unscraper.Errorf(unscraper.EQUOTA, "API quota exceeded. Please check your subscription or switch to a different API key.")
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(text, "invalid_api_key") || strings.Contains(text, "authentication"):
		return unscraper.Errorf(unscraper.EUNAUTHORIZED, "Invalid API key. Please check your API key and try again.")
	case status == http.StatusTooManyRequests || strings.Contains(text, "rate_limit") || strings.Contains(text, "429"):
		return unscraper.RateLimited(WaitHint(message + " " + err.Error()))
	case status == http.StatusServiceUnavailable || strings.Contains(text, "503"):
		return unscraper.Errorf(unscraper.EUNAVAILABLE, "Groq API is temporarily unavailable. Please try again in a few minutes.")
	default:
		return unscraper.Errorf(unscraper.EPROVIDER, "API Error: %s", message)
	}
}

// WaitHint returns the suggested wait in s, or "" when there is none.
func WaitHint(s string) string {
	if m := waitRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}
