package loader

import (
	"errors"
	"fmt"
)

// ErrNotCached is returned by Cached when no report has been stored yet
var ErrNotCached = errors.New("no cached report")

// NetworkError reports a failed fetch: connection failure, timeout or a
// non-2xx status. StatusCode is zero when no response arrived.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError reports a body that is not JSON of the report shape
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
