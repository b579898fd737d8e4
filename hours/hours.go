package hours

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var stockholmLoc *time.Location

func init() {
	var err error
	stockholmLoc, err = time.LoadLocation("Europe/Stockholm")
	if err != nil {
		panic(fmt.Sprintf("failed to load Stockholm location: %v", err))
	}
}

func Stockholm() *time.Location {
	return stockholmLoc
}

func LocationStockholm(t time.Time) time.Time {
	return t.In(stockholmLoc)
}

// Midnight in Stockholm for the given calendar day.
func Midnight(t time.Time) time.Time {
	t = t.In(stockholmLoc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, stockholmLoc)
}

func Today() time.Time {
	return Midnight(time.Now())
}

// ParseDate parses YYYY-MM-DD as a Stockholm calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, stockholmLoc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func NextDay(date time.Time) time.Time {
	return Midnight(date).AddDate(0, 0, 1)
}

func DateString(t time.Time) string {
	return t.In(stockholmLoc).Format(DateLayout)
}

// DisplayRange returns the start and end hour shown for an interval.
// An interval that starts and ends within the same hour (sub-hourly
// resolution) is shown as ending at the next hour.
func DisplayRange(start, end time.Time) (int, int) {
	startHour := start.Hour()
	endHour := end.Hour()
	if endHour == startHour {
		endHour = (startHour + 1) % 24
	}
	return startHour, endHour
}

// FormatRange renders DisplayRange as "HH-HH".
func FormatRange(start, end time.Time) string {
	s, e := DisplayRange(start, end)
	return fmt.Sprintf("%02d-%02d", s, e)
}
