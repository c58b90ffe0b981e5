package httpclient

import (
	"fmt"
	"strings"
	"time"
)

// Error codes carried by fetch failures.
const (
	CodeTimeout       = "TIMEOUT"
	CodeHTTPStatus    = "HTTP_STATUS"
	CodeParse         = "PARSE_ERROR"
	CodeRequestFailed = "REQUEST_FAILED"
)

// TimeoutError reports that a request did not finish within its deadline.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("request to %s timed out after %s", e.URL, e.Timeout)
	}
	return fmt.Sprintf("request to %s timed out", e.URL)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
func (e *TimeoutError) Code() string  { return CodeTimeout }

// RequestError is any transport failure other than a timeout.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
func (e *RequestError) Code() string  { return CodeRequestFailed }

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Code() string { return CodeHTTPStatus }

// ParseError reports a body that could not be decoded as JSON.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse JSON from %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
func (e *ParseError) Code() string  { return CodeParse }

// Snippet trims a response body for inclusion in error messages.
func Snippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
