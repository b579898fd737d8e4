package www

import (
	"log/slog"
	"net/http"
)

// The task fetches in the background, the page picks up new prices on the
// next load.
func NewRefreshHandler(logger *slog.Logger, task func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if task == nil {
			http.Error(w, "Refresh not available", http.StatusServiceUnavailable)
			return
		}
		logger.Info("price refresh requested")
		go task()
		w.WriteHeader(http.StatusAccepted)
	}
}
