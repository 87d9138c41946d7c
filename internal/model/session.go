package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// WorkSession is the clock-in/clock-out record of one calendar day, keyed by
// Date in YYYY-MM-DD form. ClockOut is nil while the day is open.
type WorkSession struct {
	Date     string     `json:"date"`
	ClockIn  time.Time  `json:"clockIn"`
	ClockOut *time.Time `json:"clockOut"`
}

// Open reports whether the session has not been clocked out yet.
func (s WorkSession) Open() bool {
	return s.ClockOut == nil
}

// Clone returns a copy that shares no pointers with s.
func (s WorkSession) Clone() WorkSession {
	s.ClockOut = cloneTime(s.ClockOut)
	return s
}

// UnmarshalJSON accepts the same timestamp encodings as JobEntry.
func (s *WorkSession) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date     string          `json:"date"`
		ClockIn  json.RawMessage `json:"clockIn"`
		ClockOut json.RawMessage `json:"clockOut"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	in, err := decodeTimestamp(raw.ClockIn)
	if err != nil {
		return fmt.Errorf("session %q clockIn: %w", raw.Date, err)
	}
	if in == nil {
		return fmt.Errorf("session %q: missing clockIn", raw.Date)
	}
	out, err := decodeTimestamp(raw.ClockOut)
	if err != nil {
		return fmt.Errorf("session %q clockOut: %w", raw.Date, err)
	}
	*s = WorkSession{Date: raw.Date, ClockIn: *in, ClockOut: out}
	return nil
}
