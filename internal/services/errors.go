package services

import "errors"

// Poll service errors
var (
	// ErrNotLoaded is returned by view accessors before the first successful refresh
	ErrNotLoaded = errors.New("poll data not loaded yet")

	// ErrSourceNotFound is returned for source names absent from the dataset
	ErrSourceNotFound = errors.New("source not found")

	// ErrSuperseded is returned by a refresh that was overtaken by a newer one.
	// Its result is discarded.
	ErrSuperseded = errors.New("refresh superseded by a newer request")

	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
