package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"medvault/internal/domain"
	"medvault/internal/httputil"
)

// Recovery middleware recovers from panics and answers with an IOFailure envelope
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"method", r.Method,
						"request_id", httputil.GetRequestID(r),
						"stack", string(debug.Stack()),
					)

					httputil.RespondError(w, http.StatusInternalServerError, &httputil.ErrorBody{
						Code:    string(domain.CodeIOFailure),
						Message: "internal error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
