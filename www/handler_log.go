package www

import (
	"log/slog"
	"net/http"

	"github.com/icodeforyou/elpris-go/logging"
)

const defaultLogPageSize = 25

func NewLogHandler(logger *slog.Logger, logs LogReader, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := max(intOrDefault(r.URL, "page", 1), 1)
		pageSize := intOrDefault(r.URL, "pageSize", defaultLogPageSize)
		if pageSize < 1 {
			pageSize = defaultLogPageSize
		}
		level := slog.LevelDebug
		if l := r.URL.Query().Get("level"); l != "" {
			level = logging.LevelFromString(&l)
		}

		entries, err := logs.GetLogEntries(r.Context(), level, page, pageSize)
		if err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		data := struct {
			Page     int
			NextPage int
			PageSize int
			Entries  []logEntryView
		}{
			Page:     page,
			NextPage: page + 1,
			PageSize: pageSize,
			Entries:  newLogEntryViews(entries),
		}

		w.Header().Set("Content-Type", "text/html")
		if err := tm.ExecuteToWriter("log.html", data, w); err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

type logEntryView struct {
	Time    string
	Level   string
	Message string
	Attrs   string
}

func newLogEntryViews(entries []logging.LogEntry) []logEntryView {
	views := make([]logEntryView, len(entries))
	for i, e := range entries {
		views[i] = logEntryView{
			Time:    e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			Level:   slog.Level(e.Level).String(),
			Message: e.Message,
			Attrs:   e.Attrs,
		}
	}
	return views
}
