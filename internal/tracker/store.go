// Package tracker owns the job and work-session collections and keeps them
// consistent across create, edit, delete and import.
package tracker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/workday-tracker/internal/logging"
	"github.com/Tiliavir/workday-tracker/internal/model"
	"github.com/Tiliavir/workday-tracker/internal/storage"
	"github.com/Tiliavir/workday-tracker/internal/timecalc"
)

// JobPatch lists the job fields to change. Nil fields are left alone.
// ClearEndTime re-opens a job and takes precedence over EndTime.
type JobPatch struct {
	Name         *string
	Description  *string
	StartTime    *time.Time
	EndTime      *time.Time
	ClearEndTime bool
}

// SessionPatch lists the session fields to change. Nil fields are left alone.
type SessionPatch struct {
	ClockIn       *time.Time
	ClockOut      *time.Time
	ClearClockOut bool
}

// ParseSessionPatch builds a SessionPatch from timestamps that may be
// time values or serialized forms (see model.ParseTimestamp).
func ParseSessionPatch(clockIn, clockOut any) (SessionPatch, error) {
	in, err := model.ParseTimestamp(clockIn)
	if err != nil {
		return SessionPatch{}, err
	}
	out, err := model.ParseTimestamp(clockOut)
	if err != nil {
		return SessionPatch{}, err
	}
	return SessionPatch{ClockIn: in, ClockOut: out}, nil
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now as the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID job id generator.
func WithIDGenerator(next func() string) Option {
	return func(s *Store) { s.newID = next }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Store is the single owner of the job and work-session collections. Every
// mutation updates memory first and then queues a snapshot of the affected
// collection for persistence; persistence failures are logged and never
// roll back the in-memory state.
type Store struct {
	mu       sync.Mutex
	jobs     map[string]model.JobEntry
	order    []string
	sessions map[string]model.WorkSession

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
	writer *storage.Writer
}

// New returns an empty store. Without a gateway it does not persist.
func New(opts ...Option) *Store {
	s := &Store{
		jobs:     map[string]model.JobEntry{},
		sessions: map[string]model.WorkSession{},
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDefault(s.logger).With("component", "tracker")
	return s
}

// Open loads both collections from gw and returns a store that persists
// every mutation back to it. Load failures are logged and leave the
// affected collection empty.
func Open(ctx context.Context, gw storage.Gateway, opts ...Option) *Store {
	s := New(opts...)
	s.loadJobs(ctx, gw)
	s.loadSessions(ctx, gw)
	s.writer = storage.NewWriter(gw, func(key string, err error) {
		s.logger.Error("persisting collection failed", "key", key, "error", err)
	})
	return s
}

// Flush waits until all queued persistence writes have been applied.
func (s *Store) Flush(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Flush(ctx)
}

// Close drains queued writes and stops persisting.
func (s *Store) Close(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close(ctx)
}

func (s *Store) loadJobs(ctx context.Context, gw storage.Gateway) {
	records := s.loadRecords(ctx, gw, storage.KeyJobs)
	for i, raw := range records {
		var j model.JobEntry
		if err := json.Unmarshal(raw, &j); err != nil {
			s.logger.Warn("skipping unreadable job", "index", i, "error", err)
			continue
		}
		if j.ID == "" {
			s.logger.Warn("skipping job without id", "index", i)
			continue
		}
		if _, dup := s.jobs[j.ID]; !dup {
			s.order = append(s.order, j.ID)
		}
		s.jobs[j.ID] = j
	}
}

func (s *Store) loadSessions(ctx context.Context, gw storage.Gateway) {
	records := s.loadRecords(ctx, gw, storage.KeyWorkSessions)
	for i, raw := range records {
		var ws model.WorkSession
		if err := json.Unmarshal(raw, &ws); err != nil {
			s.logger.Warn("skipping unreadable work session", "index", i, "error", err)
			continue
		}
		if ws.Date == "" {
			ws.Date = timecalc.DateKey(ws.ClockIn)
		}
		s.sessions[ws.Date] = ws
	}
}

func (s *Store) loadRecords(ctx context.Context, gw storage.Gateway, key string) []json.RawMessage {
	data, found, err := gw.Load(ctx, key)
	if err != nil {
		s.logger.Error("loading collection failed, starting empty", "key", key, "error", err)
		return nil
	}
	if !found {
		return nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Error("decoding collection failed, starting empty", "key", key, "error", err)
		return nil
	}
	return records
}

// AddJob starts a new active job now.
func (s *Store) AddJob(name, description string) model.JobEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := model.JobEntry{
		ID:          s.newID(),
		Name:        name,
		Description: description,
		StartTime:   s.now(),
	}
	s.putJob(job)
	s.persistJobs()
	return job.Clone()
}

// EndJob sets the end time of an active job to now. It reports whether
// anything changed; unknown or already ended jobs are left untouched.
func (s *Store) EndJob(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || !job.Active() {
		return false
	}
	job.EndTime = model.TimePtr(s.now())
	s.jobs[id] = job
	s.persistJobs()
	return true
}

// UpdateJob merges patch over the job with id, or creates a job with that id
// when none exists. Missing fields of a new job default to an empty name and
// description, a start time of now and no end time.
func (s *Store) UpdateJob(id string, patch JobPatch) model.JobEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		job = model.JobEntry{ID: id, StartTime: s.now()}
	}
	if patch.Name != nil {
		job.Name = *patch.Name
	}
	if patch.Description != nil {
		job.Description = *patch.Description
	}
	if patch.StartTime != nil {
		job.StartTime = *patch.StartTime
	}
	switch {
	case patch.ClearEndTime:
		job.EndTime = nil
	case patch.EndTime != nil:
		job.EndTime = model.TimePtr(*patch.EndTime)
	}
	s.putJob(job)
	s.persistJobs()
	return job.Clone()
}

func (s *Store) putJob(job model.JobEntry) {
	if _, exists := s.jobs[job.ID]; !exists {
		s.order = append(s.order, job.ID)
	}
	s.jobs[job.ID] = job
}

// Job returns the job with id.
func (s *Store) Job(id string) (model.JobEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	return job.Clone(), ok
}

// Jobs returns every job in insertion order.
func (s *Store) Jobs() []model.JobEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobsWhere(func(model.JobEntry) bool { return true })
}

// ActiveJobs returns jobs without an end time, in insertion order.
func (s *Store) ActiveJobs() []model.JobEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobsWhere(model.JobEntry.Active)
}

// CompletedJobs returns ended jobs, most recently ended first. Jobs with the
// same end time keep their insertion order.
func (s *Store) CompletedJobs() []model.JobEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	done := s.jobsWhere(func(j model.JobEntry) bool { return !j.Active() })
	sort.SliceStable(done, func(a, b int) bool {
		return done[a].EndTime.After(*done[b].EndTime)
	})
	return done
}

func (s *Store) jobsWhere(keep func(model.JobEntry) bool) []model.JobEntry {
	out := make([]model.JobEntry, 0, len(s.order))
	for _, id := range s.order {
		if j := s.jobs[id]; keep(j) {
			out = append(out, j.Clone())
		}
	}
	return out
}

// ClockIn starts today's work session now. An existing session for today,
// open or closed, is replaced.
func (s *Store) ClockIn() model.WorkSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	ws := model.WorkSession{Date: timecalc.DateKey(now), ClockIn: now}
	s.sessions[ws.Date] = ws
	s.persistSessions()
	return ws
}

// ClockOut closes today's work session now. It reports whether a session
// for today existed.
func (s *Store) ClockOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := timecalc.DateKey(now)
	ws, ok := s.sessions[today]
	if !ok {
		return false
	}
	ws.ClockOut = model.TimePtr(now)
	s.sessions[today] = ws
	s.persistSessions()
	return true
}

// CurrentWorkSession returns today's session.
func (s *Store) CurrentWorkSession() (model.WorkSession, bool) {
	return s.WorkSessionForDate(timecalc.DateKey(s.now()))
}

// WorkSessionForDate returns the session keyed to date (YYYY-MM-DD).
func (s *Store) WorkSessionForDate(date string) (model.WorkSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.sessions[date]
	return ws.Clone(), ok
}

// WorkSessions returns every session ordered by date.
func (s *Store) WorkSessions() []model.WorkSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedSessions()
}

func (s *Store) sortedSessions() []model.WorkSession {
	out := make([]model.WorkSession, 0, len(s.sessions))
	for _, ws := range s.sessions {
		out = append(out, ws.Clone())
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date < out[b].Date })
	return out
}

// UpdateWorkSession merges patch over the session for date, or creates one
// when none exists (clock-in defaults to now, clock-out to none).
func (s *Store) UpdateWorkSession(date string, patch SessionPatch) model.WorkSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.sessions[date]
	if !ok {
		ws = model.WorkSession{Date: date, ClockIn: s.now()}
	}
	if patch.ClockIn != nil {
		ws.ClockIn = *patch.ClockIn
	}
	switch {
	case patch.ClearClockOut:
		ws.ClockOut = nil
	case patch.ClockOut != nil:
		ws.ClockOut = model.TimePtr(*patch.ClockOut)
	}
	s.sessions[date] = ws
	s.persistSessions()
	return ws.Clone()
}

// DeleteSession removes the session for date together with every job that
// started on that calendar day. It returns the number of jobs removed.
func (s *Store) DeleteSession(date string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, hadSession := s.sessions[date]
	delete(s.sessions, date)

	removed := s.removeJobs(func(j model.JobEntry) bool {
		return timecalc.DateKey(j.StartTime) == date
	})
	if hadSession {
		s.persistSessions()
	}
	if removed > 0 {
		s.persistJobs()
	}
	return removed
}

// ClearHistory removes every work session and every job except the active
// ones.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = map[string]model.WorkSession{}
	s.removeJobs(func(j model.JobEntry) bool { return !j.Active() })
	s.persistSessions()
	s.persistJobs()
}

func (s *Store) removeJobs(drop func(model.JobEntry) bool) int {
	kept := s.order[:0]
	removed := 0
	for _, id := range s.order {
		if drop(s.jobs[id]) {
			delete(s.jobs, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed
}

func (s *Store) persistJobs() {
	s.persist(storage.KeyJobs, s.jobsWhere(func(model.JobEntry) bool { return true }))
}

func (s *Store) persistSessions() {
	s.persist(storage.KeyWorkSessions, s.sortedSessions())
}

func (s *Store) persist(key string, v any) {
	if s.writer == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encoding collection failed", "key", key, "error", err)
		return
	}
	s.writer.Enqueue(key, data)
}
