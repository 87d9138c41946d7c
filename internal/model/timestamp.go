package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnparseableTime is returned when a serialized timestamp cannot be read.
var ErrUnparseableTime = errors.New("unparseable timestamp")

// Layouts without a zone are interpreted in the local time zone.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp normalizes a timestamp that may arrive as a time.Time, a
// *time.Time, an RFC 3339 string, or Unix milliseconds. A nil value or an
// empty string yields (nil, nil).
func ParseTimestamp(v any) (*time.Time, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &x, nil
	case *time.Time:
		return cloneTime(x), nil
	case string:
		return parseTimeString(x)
	case json.Number:
		ms, err := x.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnparseableTime, x)
		}
		return fromMillis(ms), nil
	case int64:
		return fromMillis(x), nil
	case int:
		return fromMillis(int64(x)), nil
	case float64:
		return fromMillis(int64(x)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrUnparseableTime, v)
	}
}

// TimePtr returns a pointer to a copy of t.
func TimePtr(t time.Time) *time.Time {
	return &t
}

func parseTimeString(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &t, nil
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnparseableTime, s)
}

func decodeTimestamp(raw json.RawMessage) (*time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnparseableTime, raw)
	}
	return ParseTimestamp(v)
}

func fromMillis(ms int64) *time.Time {
	t := time.UnixMilli(ms)
	return &t
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
