package http

import (
	"log/slog"
	"net/http"

	apierrors "pollscope/internal/errors"
	"pollscope/internal/services"
)

// NewErrorHandler returns an error handler that knows the poll service errors
func NewErrorHandler(logger *slog.Logger, includeStack bool) *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(logger, includeStack).
		Register(services.ErrNotLoaded, http.StatusServiceUnavailable, apierrors.TypeNotLoaded, "Poll Data Not Loaded").
		Register(services.ErrSourceNotFound, http.StatusNotFound, apierrors.TypeNoSource, "Unknown Source").
		Register(services.ErrSuperseded, http.StatusConflict, apierrors.TypeSuperseded, "Refresh Superseded").
		Register(services.ErrServiceUnavailable, http.StatusServiceUnavailable, apierrors.TypeServiceDown, "Service Unavailable")
}
