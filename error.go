package unscraper

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINVALID      = "invalid"
	EFETCH        = "fetch"
	EPARSE        = "parse"
	ERATELIMIT    = "rate_limit"
	EUNAUTHORIZED = "unauthorized"
	EQUOTA        = "quota"
	EUNAVAILABLE  = "unavailable"
	EPROVIDER     = "provider"
	ENODATA       = "no_data"
	EINTERNAL     = "internal"
)

// Error represents an application-specific error. Code is meant for
// programmatic handling and Message is safe to show to end users.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("unscraper error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors return their own text.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err must abort a whole extraction batch rather
// than only the chunk that produced it.
func IsFatal(err error) bool {
	switch ErrorCode(err) {
	case EUNAUTHORIZED, EQUOTA:
		return true
	}
	return false
}

// RateLimited returns an ERATELIMIT error. wait is the provider's suggested
// delay, included in the message when known.
func RateLimited(wait string) *Error {
	if wait != "" {
		return Errorf(ERATELIMIT, "Rate limit reached. Please wait %s. The API is processing too many requests.", wait)
	}
	return Errorf(ERATELIMIT, "Rate limit reached. The API is processing too many requests.")
}
