package tracker

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors for manual edits. The store itself never returns them;
// callers check edits before committing them.
var (
	ErrInvalidRange = errors.New("end time is before start time")
	ErrInvalidTime  = errors.New("invalid time")
)

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04PM",
	"3:04 PM",
	"3:04pm",
	"3:04 pm",
}

// ValidateRange rejects an end time that lies before start. A nil end is
// always valid.
func ValidateRange(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return fmt.Errorf("%w: %s is before %s", ErrInvalidRange,
			end.Format("2006-01-02 15:04"), start.Format("2006-01-02 15:04"))
	}
	return nil
}

// ParseClockTime parses a manually entered time of day such as "09:30",
// "9:30", "17:45:10" or "5:45 PM" and places it on the local calendar day
// of day.
func ParseClockTime(text string, day time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		d := day.In(time.Local)
		return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local), nil
	}
	return time.Time{}, fmt.Errorf("%w %q (want HH:MM)", ErrInvalidTime, text)
}
