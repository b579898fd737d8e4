package www

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

const requestIdHeader = "X-Request-Id"

// requestLogger tags every request with an id, taken from the client when it
// sends one.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIdHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIdHeader, id)

		logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("url", r.URL.String()),
			slog.String("remoteAddr", r.RemoteAddr),
			slog.String("requestId", id))
		next.ServeHTTP(w, r)
	})
}
