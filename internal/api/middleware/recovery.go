package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/spyword/internal/api/apierr"
	"github.com/mcoot/spyword/internal/middleware"
)

// Recovery turns panics in REST handlers into an INTERNAL error body
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

// apiPanicHandler also closes the connection, since the handler may have
// left the request body half read
func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	w.Header().Set("Connection", "close")
	apierr.WriteError(w, apierr.NewInternalError())
}
