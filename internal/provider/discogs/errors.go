package discogs

import "fmt"

// CallError is returned by every Client method when the call fails, whether
// at request construction, in transport, while reading the body, while
// decoding JSON or while writing to the caller's sink.
type CallError struct {
	Op  string // "search releases", "search artists" or "fetch image"
	URL string // the URL the call was issued for
	Err error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("discogs %s failed for %s: %v", e.Op, e.URL, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// StatusError reports an image response that was not 2xx.
type StatusError struct {
	StatusCode int
	Status     string // e.g. "404 Not Found"
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %s", e.Status)
}
