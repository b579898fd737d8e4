package logging

import (
	"log/slog"
	"strings"
)

// LevelFromString accepts DEBUG, INFO, WARN (or WARNING) and ERROR in any
// case, anything else is INFO.
func LevelFromString(str *string) slog.Level {
	if str == nil {
		return slog.LevelInfo
	}
	s := strings.ToUpper(strings.TrimSpace(*str))
	if s == "WARNING" {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
