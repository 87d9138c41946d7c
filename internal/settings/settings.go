// Package settings keeps the user preferences that outlive a session. Today
// that is the expected length of a working day.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/Tiliavir/workday-tracker/internal/logging"
	"github.com/Tiliavir/workday-tracker/internal/storage"
)

// DefaultExpectedWorkHours applies until the user sets a value.
const DefaultExpectedWorkHours = 8.0

const (
	minHours = 0.0
	maxHours = 24.0
)

const fieldExpectedWorkHours = "expectedWorkHours"

// ErrOutOfRange rejects expected hours outside (0, 24].
var ErrOutOfRange = errors.New("expected work hours out of range")

// Option configures a Settings.
type Option func(*Settings)

// WithLogger sets the logger used for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Settings) { s.logger = logger }
}

// WithDefault replaces DefaultExpectedWorkHours. Invalid values are ignored.
func WithDefault(hours float64) Option {
	return func(s *Settings) {
		if Validate(hours) == nil {
			s.expected = hours
		}
	}
}

// Settings holds the persisted preferences. Fields it does not know are kept
// and written back untouched.
type Settings struct {
	mu       sync.Mutex
	expected float64
	raw      map[string]json.RawMessage

	logger *slog.Logger
	writer *storage.Writer
}

// New returns settings with defaults that are not persisted.
func New(opts ...Option) *Settings {
	s := &Settings{expected: DefaultExpectedWorkHours, raw: map[string]json.RawMessage{}}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDefault(s.logger).With("component", "settings")
	return s
}

// Open loads the settings record from gw. A missing, unreadable or invalid
// record keeps the defaults.
func Open(ctx context.Context, gw storage.Gateway, opts ...Option) *Settings {
	s := New(opts...)
	s.load(ctx, gw)
	s.writer = storage.NewWriter(gw, func(key string, err error) {
		s.logger.Error("persisting settings failed", "key", key, "error", err)
	})
	return s
}

func (s *Settings) load(ctx context.Context, gw storage.Gateway) {
	data, found, err := gw.Load(ctx, storage.KeySettings)
	if err != nil {
		s.logger.Error("loading settings failed, using defaults", "error", err)
		return
	}
	if !found {
		return
	}
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Error("decoding settings failed, using defaults", "error", err)
		return
	}
	s.raw = raw

	v, ok := raw[fieldExpectedWorkHours]
	if !ok {
		return
	}
	var hours float64
	if err := json.Unmarshal(v, &hours); err != nil || Validate(hours) != nil {
		s.logger.Warn("ignoring stored expected work hours", "value", string(v))
		return
	}
	s.expected = hours
}

// Validate reports whether hours is a usable expected day length.
func Validate(hours float64) error {
	if math.IsNaN(hours) || hours <= minHours || hours > maxHours {
		return fmt.Errorf("%w: %g (want more than %g and at most %g)", ErrOutOfRange, hours, minHours, maxHours)
	}
	return nil
}

// ExpectedWorkHours returns the expected length of a working day in hours.
func (s *Settings) ExpectedWorkHours() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expected
}

// SetExpectedWorkHours updates and persists the expected day length.
// Out-of-range values return ErrOutOfRange and change nothing.
func (s *Settings) SetExpectedWorkHours(hours float64) error {
	if err := Validate(hours); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded, err := json.Marshal(hours)
	if err != nil {
		return fmt.Errorf("encoding expected work hours: %w", err)
	}
	s.expected = hours
	s.raw[fieldExpectedWorkHours] = encoded
	s.persist()
	return nil
}

func (s *Settings) persist() {
	if s.writer == nil {
		return
	}
	data, err := json.Marshal(s.raw)
	if err != nil {
		s.logger.Error("encoding settings failed", "error", err)
		return
	}
	s.writer.Enqueue(storage.KeySettings, data)
}

// Flush waits until queued writes have been applied.
func (s *Settings) Flush(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Flush(ctx)
}

// Close drains queued writes and stops persisting.
func (s *Settings) Close(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close(ctx)
}
