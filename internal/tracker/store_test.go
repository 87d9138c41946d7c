package tracker_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/workday-tracker/internal/logging"
	"github.com/Tiliavir/workday-tracker/internal/model"
	"github.com/Tiliavir/workday-tracker/internal/storage"
	"github.com/Tiliavir/workday-tracker/internal/testutil"
	"github.com/Tiliavir/workday-tracker/internal/timecalc"
	"github.com/Tiliavir/workday-tracker/internal/tracker"
)

func newStore(t *testing.T, start time.Time) (*tracker.Store, *testutil.Clock) {
	t.Helper()
	clock := testutil.NewClock(start)
	s := tracker.New(
		tracker.WithClock(clock.Now),
		tracker.WithIDGenerator(testutil.NewIDGenerator("job").Next),
		tracker.WithLogger(logging.Discard()),
	)
	return s, clock
}

func strPtr(s string) *string { return &s }

func ids(jobs []model.JobEntry) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func TestAddJobStartsActiveJob(t *testing.T) {
	start := testutil.At(2026, 2, 27, 9, 5)
	s, _ := newStore(t, start)

	job := s.AddJob("A", "write report")
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, "A", job.Name)
	assert.Equal(t, "write report", job.Description)
	assert.Equal(t, start, job.StartTime)
	assert.Nil(t, job.EndTime)

	assert.Equal(t, []string{"job-1"}, ids(s.ActiveJobs()))
	assert.Empty(t, s.CompletedJobs())
}

func TestAddJobGeneratesUniqueIDsByDefault(t *testing.T) {
	s := tracker.New(tracker.WithLogger(logging.Discard()))
	a := s.AddJob("A", "")
	b := s.AddJob("B", "")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestEndJobIsIdempotent(t *testing.T) {
	s, clock := newStore(t, testutil.At(2026, 2, 27, 9, 5))
	job := s.AddJob("A", "")

	clock.Set(testutil.At(2026, 2, 27, 10, 30))
	assert.True(t, s.EndJob(job.ID))

	clock.Set(testutil.At(2026, 2, 27, 11, 0))
	assert.False(t, s.EndJob(job.ID), "second call is a no-op")

	got, ok := s.Job(job.ID)
	require.True(t, ok)
	require.NotNil(t, got.EndTime)
	assert.Equal(t, testutil.At(2026, 2, 27, 10, 30), *got.EndTime)

	assert.False(t, s.EndJob("missing"), "unknown id is a no-op")
}

func TestActiveAndCompletedPartitionJobs(t *testing.T) {
	s, clock := newStore(t, testutil.At(2026, 2, 27, 8, 0))
	a := s.AddJob("A", "")
	b := s.AddJob("B", "")
	c := s.AddJob("C", "")
	d := s.AddJob("D", "")

	clock.Set(testutil.At(2026, 2, 27, 9, 0))
	s.EndJob(a.ID)
	clock.Set(testutil.At(2026, 2, 27, 11, 0))
	s.EndJob(c.ID)

	active := s.ActiveJobs()
	completed := s.CompletedJobs()
	assert.Equal(t, []string{b.ID, d.ID}, ids(active))
	assert.Equal(t, []string{c.ID, a.ID}, ids(completed), "most recently ended first")
	assert.Len(t, s.Jobs(), len(active)+len(completed))
	for _, j := range active {
		assert.Nil(t, j.EndTime)
	}
	for _, j := range completed {
		assert.NotNil(t, j.EndTime)
	}
}

func TestCompletedJobsStableForEqualEndTimes(t *testing.T) {
	s, clock := newStore(t, testutil.At(2026, 2, 27, 8, 0))
	first := s.AddJob("first", "")
	second := s.AddJob("second", "")
	third := s.AddJob("third", "")

	clock.Set(testutil.At(2026, 2, 27, 12, 0))
	s.EndJob(third.ID)
	s.EndJob(first.ID)
	s.EndJob(second.ID)

	assert.Equal(t, []string{first.ID, second.ID, third.ID}, ids(s.CompletedJobs()))
}

func TestUpdateJobMergesExisting(t *testing.T) {
	s, _ := newStore(t, testutil.At(2026, 2, 27, 9, 0))
	job := s.AddJob("A", "old")

	end := testutil.At(2026, 2, 27, 10, 0)
	updated := s.UpdateJob(job.ID, tracker.JobPatch{Description: strPtr("new"), EndTime: &end})

	assert.Equal(t, "A", updated.Name, "unspecified fields are kept")
	assert.Equal(t, "new", updated.Description)
	require.NotNil(t, updated.EndTime)
	assert.Equal(t, end, *updated.EndTime)
	assert.Len(t, s.Jobs(), 1)

	reopened := s.UpdateJob(job.ID, tracker.JobPatch{ClearEndTime: true})
	assert.Nil(t, reopened.EndTime)
	assert.Equal(t, []string{job.ID}, ids(s.ActiveJobs()))
}

func TestUpdateJobUpsertsUnknownID(t *testing.T) {
	now := testutil.At(2026, 2, 27, 9, 0)
	s, _ := newStore(t, now)

	created := s.UpdateJob("imported-1", tracker.JobPatch{Name: strPtr("Imported")})
	assert.Equal(t, "imported-1", created.ID)
	assert.Equal(t, "Imported", created.Name)
	assert.Equal(t, "", created.Description)
	assert.Equal(t, now, created.StartTime)
	assert.Nil(t, created.EndTime)
	assert.Equal(t, []string{"imported-1"}, ids(s.ActiveJobs()))

	end := now.Add(time.Hour)
	s.UpdateJob("imported-2", tracker.JobPatch{Name: strPtr("Done"), EndTime: &end})
	assert.Equal(t, []string{"imported-2"}, ids(s.CompletedJobs()))
}

func TestClockInTwiceKeepsOnlySecond(t *testing.T) {
	s, clock := newStore(t, testutil.At(2026, 2, 27, 9, 0))
	s.ClockIn()
	clock.Set(testutil.At(2026, 2, 27, 12, 0))
	s.ClockOut()

	clock.Set(testutil.At(2026, 2, 27, 13, 0))
	s.ClockIn()

	ws, ok := s.CurrentWorkSession()
	require.True(t, ok)
	assert.Equal(t, "2026-02-27", ws.Date)
	assert.Equal(t, testutil.At(2026, 2, 27, 13, 0), ws.ClockIn)
	assert.Nil(t, ws.ClockOut)
	assert.Len(t, s.WorkSessions(), 1)
}

func TestClockOutWithoutSessionIsNoop(t *testing.T) {
	s, _ := newStore(t, testutil.At(2026, 2, 27, 17, 0))
	assert.False(t, s.ClockOut())
	_, ok := s.CurrentWorkSession()
	assert.False(t, ok)
	assert.Empty(t, s.WorkSessions())
}

func TestClockOutOnlyTouchesToday(t *testing.T) {
	s, clock := newStore(t, testutil.At(2026, 2, 26, 9, 0))
	s.ClockIn()

	clock.Set(testutil.At(2026, 2, 27, 9, 0))
	assert.False(t, s.ClockOut(), "yesterday's open session is not closed by today's clock-out")

	ws, ok := s.WorkSessionForDate("2026-02-26")
	require.True(t, ok)
	assert.True(t, ws.Open())
}

func TestWorkdayScenario(t *testing.T) {
	s, clock := newStore(t, testutil.At(2026, 2, 27, 9, 0))
	s.ClockIn()

	clock.Set(testutil.At(2026, 2, 27, 9, 5))
	job := s.AddJob("A", "")

	clock.Set(testutil.At(2026, 2, 27, 10, 30))
	s.EndJob(job.ID)

	clock.Set(testutil.At(2026, 2, 27, 17, 0))
	s.ClockOut()

	completed := s.CompletedJobs()
	require.Len(t, completed, 1)
	assert.Equal(t, "A", completed[0].Name)
	assert.Equal(t, "1h 25m", timecalc.FormatMinutes(timecalc.Minutes(completed[0].StartTime, *completed[0].EndTime)))

	ws, ok := s.WorkSessionForDate(timecalc.DateKey(clock.Now()))
	require.True(t, ok)
	require.NotNil(t, ws.ClockOut)
	assert.Equal(t, "8h 0m", timecalc.FormatMinutes(timecalc.Minutes(ws.ClockIn, *ws.ClockOut)))
}

func TestUpdateWorkSessionUpsert(t *testing.T) {
	now := testutil.At(2026, 2, 27, 9, 0)
	s, _ := newStore(t, now)

	patch, err := tracker.ParseSessionPatch("2026-02-20T08:30:00+01:00", nil)
	require.NoError(t, err)
	created := s.UpdateWorkSession("2026-02-20", patch)
	assert.True(t, created.ClockIn.Equal(time.Date(2026, 2, 20, 7, 30, 0, 0, time.UTC)))
	assert.Nil(t, created.ClockOut)

	out := testutil.At(2026, 2, 20, 16, 0)
	updated := s.UpdateWorkSession("2026-02-20", tracker.SessionPatch{ClockOut: &out})
	assert.True(t, updated.ClockIn.Equal(created.ClockIn), "clock-in kept")
	require.NotNil(t, updated.ClockOut)
	assert.Equal(t, out, *updated.ClockOut)

	defaulted := s.UpdateWorkSession("2026-02-21", tracker.SessionPatch{})
	assert.Equal(t, now, defaulted.ClockIn)

	reopened := s.UpdateWorkSession("2026-02-20", tracker.SessionPatch{ClearClockOut: true})
	assert.True(t, reopened.Open())
	assert.Len(t, s.WorkSessions(), 2)
}

func TestParseSessionPatchRejectsGarbage(t *testing.T) {
	_, err := tracker.ParseSessionPatch("not a time", nil)
	assert.ErrorIs(t, err, model.ErrUnparseableTime)
}

func TestDeleteSessionCascadesToJobsOfThatDay(t *testing.T) {
	s, clock := newStore(t, testutil.At(2026, 2, 26, 9, 0))
	s.ClockIn()
	yesterday := s.AddJob("yesterday", "")

	clock.Set(testutil.At(2026, 2, 27, 9, 0))
	s.ClockIn()
	todayA := s.AddJob("today A", "")
	clock.Set(testutil.At(2026, 2, 27, 23, 30))
	todayB := s.AddJob("today B", "")
	clock.Set(testutil.At(2026, 2, 28, 0, 30))
	s.EndJob(todayB.ID)

	removed := s.DeleteSession("2026-02-27")
	assert.Equal(t, 2, removed)

	_, ok := s.WorkSessionForDate("2026-02-27")
	assert.False(t, ok)
	_, ok = s.WorkSessionForDate("2026-02-26")
	assert.True(t, ok)

	remaining := ids(s.Jobs())
	assert.Equal(t, []string{yesterday.ID}, remaining)
	assert.NotContains(t, remaining, todayA.ID)
}

func TestDeleteSessionWithoutSessionStillRemovesJobs(t *testing.T) {
	s, _ := newStore(t, testutil.At(2026, 2, 27, 9, 0))
	s.AddJob("orphan", "")
	assert.Equal(t, 1, s.DeleteSession("2026-02-27"))
	assert.Empty(t, s.Jobs())
	assert.Equal(t, 0, s.DeleteSession("2026-01-01"))
}

func TestClearHistoryKeepsActiveJobs(t *testing.T) {
	s, clock := newStore(t, testutil.At(2026, 2, 27, 9, 0))
	s.ClockIn()
	a := s.AddJob("A", "")
	b := s.AddJob("B", "")
	c := s.AddJob("C", "")
	clock.Advance(time.Hour)
	s.EndJob(c.ID)

	s.ClearHistory()

	assert.Empty(t, s.WorkSessions())
	assert.Empty(t, s.CompletedJobs())
	assert.Equal(t, []string{a.ID, b.ID}, ids(s.ActiveJobs()))
}

func TestClearHistoryWithOnlyActiveJobs(t *testing.T) {
	s, _ := newStore(t, testutil.At(2026, 2, 27, 9, 0))
	s.AddJob("A", "")
	s.AddJob("B", "")
	s.ClearHistory()

	assert.Len(t, s.ActiveJobs(), 2)
	assert.Empty(t, s.CompletedJobs())
}

func TestReturnedJobsAreCopies(t *testing.T) {
	s, clock := newStore(t, testutil.At(2026, 2, 27, 9, 0))
	job := s.AddJob("A", "")
	clock.Advance(time.Hour)
	s.EndJob(job.ID)

	completed := s.CompletedJobs()
	*completed[0].EndTime = completed[0].EndTime.Add(24 * time.Hour)

	got, _ := s.Job(job.ID)
	assert.Equal(t, testutil.At(2026, 2, 27, 10, 0), *got.EndTime)
}

func TestOpenPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	gw := storage.NewFileGateway(t.TempDir())
	clock := testutil.NewClock(testutil.At(2026, 2, 27, 9, 0))
	opts := []tracker.Option{
		tracker.WithClock(clock.Now),
		tracker.WithIDGenerator(testutil.NewIDGenerator("job").Next),
		tracker.WithLogger(logging.Discard()),
	}

	s := tracker.Open(ctx, gw, opts...)
	s.ClockIn()
	a := s.AddJob("A", "first")
	s.AddJob("B", "second")
	clock.Advance(90 * time.Minute)
	s.EndJob(a.ID)
	s.ClockOut()
	require.NoError(t, s.Close(ctx))

	reloaded := tracker.Open(ctx, gw, tracker.WithClock(clock.Now), tracker.WithLogger(logging.Discard()))
	t.Cleanup(func() { reloaded.Close(ctx) })

	assert.Len(t, reloaded.Jobs(), 2)
	completed := reloaded.CompletedJobs()
	require.Len(t, completed, 1)
	assert.Equal(t, "A", completed[0].Name)
	assert.Equal(t, "first", completed[0].Description)
	assert.True(t, completed[0].EndTime.Equal(testutil.At(2026, 2, 27, 10, 30)))

	ws, ok := reloaded.CurrentWorkSession()
	require.True(t, ok)
	require.NotNil(t, ws.ClockOut)
	assert.True(t, ws.ClockOut.Equal(testutil.At(2026, 2, 27, 10, 30)))
}

func TestOpenToleratesLegacyAndBrokenRecords(t *testing.T) {
	ctx := context.Background()
	gw := storage.NewMemoryGateway()
	require.NoError(t, gw.Save(ctx, storage.KeyJobs, []byte(`[
		{"id":"1","name":"legacy","description":"","startTime":"2026-02-27T09:00:00.000Z"},
		{"id":"2","name":"nulled","startTime":"2026-02-27T09:00:00.000Z","endTime":null},
		{"id":"3","name":"broken","startTime":"whenever"},
		{"id":"4","name":"done","startTime":"2026-02-27T09:00:00.000Z","endTime":"2026-02-27T10:00:00.000Z"}
	]`)))
	require.NoError(t, gw.Save(ctx, storage.KeyWorkSessions, []byte(`[
		{"date":"2026-02-27","clockIn":"2026-02-27T08:00:00.000Z"}
	]`)))

	s := tracker.Open(ctx, gw, tracker.WithLogger(logging.Discard()))
	t.Cleanup(func() { s.Close(ctx) })

	assert.Equal(t, []string{"1", "2"}, ids(s.ActiveJobs()))
	assert.Equal(t, []string{"4"}, ids(s.CompletedJobs()))
	ws, ok := s.WorkSessionForDate("2026-02-27")
	require.True(t, ok)
	assert.True(t, ws.Open())
}

func TestOpenStartsEmptyOnCorruptData(t *testing.T) {
	ctx := context.Background()
	gw := storage.NewMemoryGateway()
	require.NoError(t, gw.Save(ctx, storage.KeyJobs, []byte(`{"not":"a list"}`)))

	s := tracker.Open(ctx, gw, tracker.WithLogger(logging.Discard()))
	t.Cleanup(func() { s.Close(ctx) })
	assert.Empty(t, s.Jobs())

	s.AddJob("fresh", "")
	require.NoError(t, s.Flush(ctx))

	data, _, err := gw.Load(ctx, storage.KeyJobs)
	require.NoError(t, err)
	var stored []model.JobEntry
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "fresh", stored[0].Name)
}

func TestPersistedSnapshotReflectsLatestState(t *testing.T) {
	ctx := context.Background()
	gw := storage.NewMemoryGateway()
	s := tracker.Open(ctx, gw, tracker.WithLogger(logging.Discard()))

	for i := 0; i < 20; i++ {
		s.AddJob("job", "")
	}
	s.ClearHistory()
	s.AddJob("last", "")
	require.NoError(t, s.Close(ctx))

	data, _, err := gw.Load(ctx, storage.KeyJobs)
	require.NoError(t, err)
	var stored []model.JobEntry
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Len(t, stored, 21)
	assert.Equal(t, "last", stored[20].Name)
}
