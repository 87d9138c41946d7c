// Package csvio translates between the tracker collections and a flat CSV
// file with one row per job or work session.
package csvio

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Tiliavir/workday-tracker/internal/logging"
	"github.com/Tiliavir/workday-tracker/internal/model"
	"github.com/Tiliavir/workday-tracker/internal/timecalc"
	"github.com/Tiliavir/workday-tracker/internal/tracker"
)

// Column names, in export order.
const (
	ColType        = "Type"
	ColID          = "ID"
	ColDate        = "Date"
	ColStartTime   = "StartTime"
	ColEndTime     = "EndTime"
	ColName        = "Name"
	ColDescription = "Description"
)

// Row types.
const (
	TypeJob     = "job"
	TypeSession = "session"
)

// Header is the exported header row. Import requires all of these columns.
var Header = []string{ColType, ColID, ColDate, ColStartTime, ColEndTime, ColName, ColDescription}

var (
	// ErrEmptyInput is returned when the CSV has no header row.
	ErrEmptyInput = errors.New("CSV file is empty")
	// ErrMissingColumns is matched by *MissingColumnsError.
	ErrMissingColumns = errors.New("CSV is missing required columns")
	// ErrNoValidData is returned when no job or session row could be imported.
	ErrNoValidData = errors.New("no valid data found")
)

// MissingColumnsError names the required columns absent from the header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}

// Upserter receives imported rows. *tracker.Store satisfies it.
type Upserter interface {
	UpdateJob(id string, patch tracker.JobPatch) model.JobEntry
	UpdateWorkSession(date string, patch tracker.SessionPatch) model.WorkSession
}

// Result counts the rows applied by Import.
type Result struct {
	JobsImported     int
	SessionsImported int
	Skipped          int
}

// Export writes the header followed by one row per job and one row per
// session. Timestamps are written as RFC 3339 in local time.
func Export(w io.Writer, jobs []model.JobEntry, sessions []model.WorkSession) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, j := range jobs {
		date := ""
		if j.EndTime != nil {
			date = timecalc.DateKey(*j.EndTime)
		}
		row := []string{TypeJob, j.ID, date, formatTime(&j.StartTime), formatTime(j.EndTime), j.Name, j.Description}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing job %s: %w", j.ID, err)
		}
	}
	for _, s := range sessions {
		row := []string{TypeSession, s.Date, s.Date, formatTime(&s.ClockIn), formatTime(s.ClockOut), "", ""}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing session %s: %w", s.Date, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// ExportString is Export into a string.
func ExportString(jobs []model.JobEntry, sessions []model.WorkSession) string {
	var b strings.Builder
	// Writes to a strings.Builder cannot fail.
	_ = Export(&b, jobs, sessions)
	return b.String()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(time.Local).Format(time.RFC3339)
}

type columns map[string]int

// get returns the field trimmed of surrounding whitespace.
func (c columns) get(rec []string, name string) string {
	return strings.TrimSpace(c.raw(rec, name))
}

// raw returns the field exactly as written. Free text columns use it.
func (c columns) raw(rec []string, name string) string {
	return rec[c[name]]
}

func readHeader(rec []string) (columns, error) {
	idx := columns{}
	for i, name := range rec {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		for _, want := range Header {
			if strings.EqualFold(name, want) {
				if _, seen := idx[want]; !seen {
					idx[want] = i
				}
			}
		}
	}
	var missing []string
	for _, want := range Header {
		if _, ok := idx[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return idx, nil
}

// lineReader yields CSV records from a slice of physical lines. A quoting
// error is contained to the line it starts on: such a line is read with the
// unescaped comma split of older exports and reading resumes on the next line.
type lineReader struct {
	lines []string
	next  int
}

func newLineReader(r io.Reader) (*lineReader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return &lineReader{lines: lines}, nil
}

const maxLineBytes = 16 << 20

// read returns the next record, the 1-based line it starts on and whether
// strict parsing failed. It returns io.EOF after the last record.
func (lr *lineReader) read() (rec []string, line int, lenient bool, err error) {
	for lr.next < len(lr.lines) && strings.TrimSpace(lr.lines[lr.next]) == "" {
		lr.next++
	}
	if lr.next >= len(lr.lines) {
		return nil, 0, false, io.EOF
	}
	first := lr.next
	end := first + 1
	// A quoted field may span lines; keep joining while a quote is open.
	quotes := strings.Count(lr.lines[first], `"`)
	for quotes%2 == 1 && end < len(lr.lines) {
		quotes += strings.Count(lr.lines[end], `"`)
		end++
	}

	if fields, perr := parseRecord(strings.Join(lr.lines[first:end], "\n")); perr == nil {
		lr.next = end
		return fields, first + 1, false, nil
	}
	lr.next = first + 1
	return strings.Split(lr.lines[first], ","), first + 1, true, nil
}

// parseRecord parses text as exactly one strict CSV record.
func parseRecord(text string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	rec, err := cr.Read()
	if err != nil {
		return nil, err
	}
	if _, err := cr.Read(); !errors.Is(err, io.EOF) {
		return nil, errors.New("more than one record")
	}
	return rec, nil
}

// Import reads CSV from r and upserts every valid job and session row into
// target. A missing header or missing columns abort before anything is
// applied. Malformed rows are logged and skipped; if no row at all could be
// applied, ErrNoValidData is returned.
func Import(ctx context.Context, r io.Reader, target Upserter) (Result, error) {
	logger := logging.FromContext(ctx).With("component", "csvio", "operation", "import")

	lr, err := newLineReader(r)
	if err != nil {
		return Result{}, err
	}
	head, _, _, err := lr.read()
	if errors.Is(err, io.EOF) {
		return Result{}, ErrEmptyInput
	}
	idx, err := readHeader(head)
	if err != nil {
		return Result{}, err
	}
	width := 0
	for _, i := range idx {
		if i+1 > width {
			width = i + 1
		}
	}

	var res Result
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, line, lenient, err := lr.read()
		if errors.Is(err, io.EOF) {
			break
		}
		if lenient {
			logger.Debug("row is not valid quoted CSV, splitting on commas", "line", line)
		}
		if len(rec) < width {
			logger.Warn("skipping row with too few fields", "line", line, "fields", len(rec))
			res.Skipped++
			continue
		}

		switch strings.ToLower(idx.get(rec, ColType)) {
		case TypeJob:
			if err := importJob(rec, idx, target); err != nil {
				logger.Warn("skipping job row", "line", line, "error", err)
				res.Skipped++
				continue
			}
			res.JobsImported++
		case TypeSession:
			if err := importSession(rec, idx, target); err != nil {
				logger.Warn("skipping session row", "line", line, "error", err)
				res.Skipped++
				continue
			}
			res.SessionsImported++
		default:
			res.Skipped++
		}
	}

	if res.JobsImported == 0 && res.SessionsImported == 0 {
		return res, ErrNoValidData
	}
	logger.Info("import finished", "jobs", res.JobsImported, "sessions", res.SessionsImported, "skipped", res.Skipped)
	return res, nil
}

func importJob(rec []string, idx columns, target Upserter) error {
	id := idx.get(rec, ColID)
	startText := idx.get(rec, ColStartTime)
	if id == "" || startText == "" {
		return errors.New("missing ID or StartTime")
	}
	start, err := model.ParseTimestamp(startText)
	if err != nil {
		return fmt.Errorf("StartTime: %w", err)
	}
	end, err := model.ParseTimestamp(idx.get(rec, ColEndTime))
	if err != nil {
		return fmt.Errorf("EndTime: %w", err)
	}
	name := idx.raw(rec, ColName)
	desc := idx.raw(rec, ColDescription)
	target.UpdateJob(id, tracker.JobPatch{
		Name:         &name,
		Description:  &desc,
		StartTime:    start,
		EndTime:      end,
		ClearEndTime: end == nil,
	})
	return nil
}

func importSession(rec []string, idx columns, target Upserter) error {
	date := idx.get(rec, ColDate)
	inText := idx.get(rec, ColStartTime)
	if date == "" || inText == "" {
		return errors.New("missing Date or StartTime")
	}
	if _, err := timecalc.ParseDateKey(date); err != nil {
		return err
	}
	patch, err := tracker.ParseSessionPatch(inText, idx.get(rec, ColEndTime))
	if err != nil {
		return err
	}
	patch.ClearClockOut = patch.ClockOut == nil
	target.UpdateWorkSession(date, patch)
	return nil
}
