package logging

import (
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewFileHandler writes JSON records to a size rotated log file.
func NewFileHandler(path string, maxSizeMB, maxBackups int, level slog.Level) slog.Handler {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}
