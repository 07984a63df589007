package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicHandler writes the response for a request whose handler panicked.
// It is not called for requests already upgraded to a WebSocket.
type PanicHandler func(w http.ResponseWriter, r *http.Request, err any)

// Recovery logs and recovers handler panics.
// http.ErrAbortHandler is re-raised so the server still aborts the response.
func Recovery(logger *slog.Logger, handler PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				upgraded := wrapped.Status() == http.StatusSwitchingProtocols
				logger.Error("panic recovered",
					slog.Any("error", err),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Bool("upgraded", upgraded),
				)

				// The connection belongs to the WebSocket now
				if upgraded {
					return
				}
				handler(w, r, err)
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}

// PlainPanicHandler answers with a bare 500 before any upgrade has happened
func PlainPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
