package health

import (
	"io"
	"log/slog"
	"net/http"
	"runtime"
)

// recoverStackSize caps the stack trace captured on panic.
const recoverStackSize = 4096

type fatalPayload struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// Recoverer returns middleware that converts an unhandled panic in a probe
// handler into the handler-fatal 500 response. The panic is logged with a
// stack trace; the client only ever sees a generic message.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					stack := make([]byte, recoverStackSize)
					n := runtime.Stack(stack, false)
					logger.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(stack[:n])),
					)
					writeJSON(w, http.StatusInternalServerError, fatalPayload{
						Error:     "internal server error",
						Timestamp: requestID(r),
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
