package client

import "fmt"

// FetchError is the single failure condition of a fetch. Network errors,
// non-2xx responses and malformed payloads all collapse into it; the cause
// is kept for logging but callers do not branch on it.
type FetchError struct {
	Hostname string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching checks for host %q: %v", e.Hostname, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
