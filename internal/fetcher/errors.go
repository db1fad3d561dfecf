package fetcher

import (
	"fmt"
	"net/http"
)

// TransportError reports a failure to obtain or decode the source table.
// It covers network failures, non-2xx responses, timeouts and bodies that
// cannot be parsed as a table. Individual bad rows are not transport errors.
type TransportError struct {
	Op         string // "fetch", "read" or "parse"
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: unexpected status %d %s", e.Op, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s %s failed", e.Op, e.URL)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamURL returns the address that failed
func (e *TransportError) UpstreamURL() string { return e.URL }

// UpstreamStatus returns the HTTP status of the failed response, or 0
func (e *TransportError) UpstreamStatus() int { return e.StatusCode }
