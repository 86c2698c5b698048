package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/bissquit/incident-log/internal/pkg/ctxlog"
)

// ErrorMapping defines how a domain error maps to an HTTP response.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string // if empty, uses err.Error()
	// Respond, when set, writes the response instead of Error.
	Respond func(w http.ResponseWriter, err error)
}

// HandleError maps a domain error to an HTTP response using provided mappings.
// Mapped errors are expected outcomes and are logged at debug level.
// If no mapping matches, logs the error and returns 500 Internal Server Error.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	logger := ctxlog.FromContext(ctx)
	for _, m := range mappings {
		if !errors.Is(err, m.Error) {
			continue
		}
		logger.Debug("request rejected", "status", m.Status, "error", err)
		if m.Respond != nil {
			m.Respond(w, err)
			return
		}
		msg := m.Message
		if msg == "" {
			msg = err.Error()
		}
		Error(w, m.Status, msg)
		return
	}
	logger.Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}
