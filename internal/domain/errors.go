package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when the request URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrDecode marks a feed body whose top-level structure could not be decoded.
	// ParseFeed recovers from it; DecodeFeed reports it for logging.
	ErrDecode = errors.New("decode earthquake feed")
)

// HTTPStatusError is returned when the feed responds with anything but 200.
type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected http status %d", e.Code)
}

// TransportError wraps connection, TLS, timeout, and body read failures.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is, or wraps, a TransportError.
func IsTransportError(err error) bool {
	return errors.As(err, new(*TransportError))
}

// StatusCode extracts the HTTP status from err, or 0 if err is not an HTTPStatusError.
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return 0
}
