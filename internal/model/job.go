package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// JobEntry is a named unit of work inside a work day. EndTime is nil while
// the job is active.
type JobEntry struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
}

// Active reports whether the job has not been ended yet.
func (j JobEntry) Active() bool {
	return j.EndTime == nil
}

// Clone returns a copy that shares no pointers with j.
func (j JobEntry) Clone() JobEntry {
	j.EndTime = cloneTime(j.EndTime)
	return j
}

// UnmarshalJSON accepts timestamps as RFC 3339 strings or Unix milliseconds,
// and a missing, null or empty endTime.
func (j *JobEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		StartTime   json.RawMessage `json:"startTime"`
		EndTime     json.RawMessage `json:"endTime"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := decodeTimestamp(raw.StartTime)
	if err != nil {
		return fmt.Errorf("job %q startTime: %w", raw.ID, err)
	}
	if start == nil {
		return fmt.Errorf("job %q: missing startTime", raw.ID)
	}
	end, err := decodeTimestamp(raw.EndTime)
	if err != nil {
		return fmt.Errorf("job %q endTime: %w", raw.ID, err)
	}
	*j = JobEntry{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		StartTime:   *start,
		EndTime:     end,
	}
	return nil
}
