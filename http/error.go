package http

import (
	"encoding/json"
	"net/http"

	"github.com/fwojciec/unscraper"
)

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	unscraper.EINVALID:      http.StatusBadRequest,
	unscraper.EUNAUTHORIZED: http.StatusUnauthorized,
	unscraper.EQUOTA:        http.StatusPaymentRequired,
	unscraper.ERATELIMIT:    http.StatusTooManyRequests,
	unscraper.EFETCH:        http.StatusBadGateway,
	unscraper.EPARSE:        http.StatusBadGateway,
	unscraper.EPROVIDER:     http.StatusBadGateway,
	unscraper.EUNAVAILABLE:  http.StatusServiceUnavailable,
	unscraper.ENODATA:       http.StatusUnprocessableEntity,
	unscraper.EINTERNAL:     http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// writeError writes {"error": message}. Internal errors are prefixed so
// users can tell them from provider or input problems.
func writeError(w http.ResponseWriter, err error) {
	code := unscraper.ErrorCode(err)
	msg := unscraper.ErrorMessage(err)
	if code == unscraper.EINTERNAL {
		msg = "An unexpected error occurred: " + msg
	}
	writeJSON(w, ErrorStatusCode(code), map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
