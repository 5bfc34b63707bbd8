package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"lexvault/internal/httputil"
)

// Recovery converts a handler panic into a 500 so one bad request
// cannot take the repository server down mid-upload. The stack is
// logged; the client sees a generic problem response.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"method", r.Method,
						"stack", string(debug.Stack()),
					)

					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
