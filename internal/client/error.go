package client

import (
	"fmt"
	"net/http"
)

// NetworkError wraps a transport-level failure: the request never produced a
// usable response, or the response body could not be read.
type NetworkError struct {
	Op   string // "read" or "save"
	File string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.File, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError represents a non-2xx response. Body holds the response text.
type HTTPStatusError struct {
	Code int
	Body string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}
