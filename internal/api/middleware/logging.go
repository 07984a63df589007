package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/spyword/internal/middleware"
)

// Logging creates request logging middleware for the API and event channel
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}
