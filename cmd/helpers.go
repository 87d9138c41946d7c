package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Tiliavir/workday-tracker/internal/model"
	"github.com/Tiliavir/workday-tracker/internal/timecalc"
	"github.com/Tiliavir/workday-tracker/internal/tracker"
)

const (
	clockLayout = "15:04"
	shortIDLen  = 8
)

// shortID abbreviates generated ids for display. Any unique prefix is
// accepted back by resolveJob.
func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// resolveJob finds a job by exact id or by a unique id prefix.
func resolveJob(jobs []model.JobEntry, ref string) (model.JobEntry, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.JobEntry{}, userErrorf("job id must not be empty")
	}
	var matches []model.JobEntry
	for _, j := range jobs {
		if j.ID == ref {
			return j, nil
		}
		if strings.HasPrefix(j.ID, ref) {
			matches = append(matches, j)
		}
	}
	switch len(matches) {
	case 0:
		return model.JobEntry{}, userErrorf("no job with id %q", ref)
	case 1:
		return matches[0], nil
	default:
		return model.JobEntry{}, userErrorf("job id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// parseEditTime accepts a time of day, placed on day, or a full timestamp.
func parseEditTime(text string, day time.Time) (time.Time, error) {
	if t, err := tracker.ParseClockTime(text, day); err == nil {
		return t, nil
	}
	t, err := model.ParseTimestamp(text)
	if err != nil || t == nil {
		return time.Time{}, userErrorf("%w %q (want HH:MM or YYYY-MM-DD HH:MM)", tracker.ErrInvalidTime, text)
	}
	return *t, nil
}

// parseDate validates a YYYY-MM-DD argument. "today" and "yesterday" are
// accepted as shortcuts.
func parseDate(text string, now time.Time) (string, time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "today":
		text = timecalc.DateKey(now)
	case "yesterday":
		text = timecalc.DateKey(now.AddDate(0, 0, -1))
	}
	day, err := timecalc.ParseDateKey(text)
	if err != nil {
		return "", time.Time{}, userError(err)
	}
	return text, day, nil
}

// confirm asks a yes/no question on an interactive terminal. Without a
// terminal the answer is no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	if !isInteractive() {
		return false
	}
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func clock(t time.Time) string {
	return t.In(time.Local).Format(clockLayout)
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
