package storage_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/workday-tracker/internal/storage"
)

func TestFileGatewayLoadNotExist(t *testing.T) {
	gw := storage.NewFileGateway(t.TempDir())
	data, found, err := gw.Load(context.Background(), storage.KeyJobs)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestFileGatewaySaveAndLoad(t *testing.T) {
	base := t.TempDir()
	gw := storage.NewFileGateway(base)
	ctx := context.Background()

	require.NoError(t, gw.Save(ctx, storage.KeyJobs, []byte(`[{"id":"a"}]`)))

	data, found, err := gw.Load(ctx, storage.KeyJobs)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"a"}]`, string(data))

	_, err = os.Stat(filepath.Join(base, "jobs.json.tmp"))
	assert.True(t, os.IsNotExist(err), "temp file must not survive a successful save")
}

func TestFileGatewayCorruptBackup(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "jobs.json")
	require.NoError(t, os.WriteFile(path, []byte("{bad json"), 0o600))

	gw := storage.NewFileGateway(base)
	_, _, err := gw.Load(context.Background(), storage.KeyJobs)
	require.Error(t, err)

	_, statErr := os.Stat(path + ".corrupt")
	assert.NoError(t, statErr, "expected backup file to exist after corrupt JSON")
}

func TestFileGatewayRejectsPathKeys(t *testing.T) {
	gw := storage.NewFileGateway(t.TempDir())
	err := gw.Save(context.Background(), "../escape", []byte("{}"))
	assert.Error(t, err)
}

func TestSQLiteGatewayUpsert(t *testing.T) {
	gw, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { gw.Close() })
	ctx := context.Background()

	_, found, err := gw.Load(ctx, storage.KeyWorkSessions)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, gw.Save(ctx, storage.KeyWorkSessions, []byte(`[1]`)))
	require.NoError(t, gw.Save(ctx, storage.KeyWorkSessions, []byte(`[1,2]`)))

	data, found, err := gw.Load(ctx, storage.KeyWorkSessions)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[1,2]`, string(data))
}

func TestSQLiteGatewayOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wdt.db")
	gw, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, gw.Save(context.Background(), storage.KeySettings, []byte(`{"expectedWorkHours":6}`)))
	require.NoError(t, gw.Close())

	reopened, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })
	data, found, err := reopened.Load(context.Background(), storage.KeySettings)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"expectedWorkHours":6}`, string(data))
}

// slowGateway records saves in arrival order and sleeps on the first one so
// later writes would overtake it if the writer did not serialize them.
type slowGateway struct {
	mu    sync.Mutex
	order []string
	first bool
}

func (g *slowGateway) Load(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (g *slowGateway) Save(_ context.Context, _ string, data []byte) error {
	g.mu.Lock()
	first := !g.first
	g.first = true
	g.mu.Unlock()
	if first {
		time.Sleep(20 * time.Millisecond)
	}
	g.mu.Lock()
	g.order = append(g.order, string(data))
	g.mu.Unlock()
	return nil
}

func TestWriterAppliesWritesInOrder(t *testing.T) {
	gw := &slowGateway{}
	w := storage.NewWriter(gw, nil)

	for i := 0; i < 10; i++ {
		w.Enqueue(storage.KeyJobs, []byte(fmt.Sprintf("snapshot-%d", i)))
	}
	require.NoError(t, w.Flush(context.Background()))

	gw.mu.Lock()
	defer gw.mu.Unlock()
	require.Len(t, gw.order, 10)
	assert.Equal(t, "snapshot-9", gw.order[len(gw.order)-1])
	for i, got := range gw.order {
		assert.Equal(t, fmt.Sprintf("snapshot-%d", i), got)
	}
	require.NoError(t, w.Close(context.Background()))
}

type failingGateway struct{}

func (failingGateway) Load(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (failingGateway) Save(context.Context, string, []byte) error      { return errors.New("disk full") }

func TestWriterReportsErrors(t *testing.T) {
	var mu sync.Mutex
	var failed []string
	w := storage.NewWriter(failingGateway{}, func(key string, err error) {
		mu.Lock()
		failed = append(failed, key+": "+err.Error())
		mu.Unlock()
	})

	w.Enqueue(storage.KeyJobs, []byte("[]"))
	require.NoError(t, w.Close(context.Background()))

	mu.Lock()
	assert.Equal(t, []string{"jobs: disk full"}, failed)
	mu.Unlock()

	// Writes after Close are reported, not panics.
	w.Enqueue(storage.KeyJobs, []byte("[]"))
	assert.ErrorIs(t, w.Flush(context.Background()), storage.ErrWriterClosed)
	assert.NoError(t, w.Close(context.Background()), "second Close is a no-op")
}

func TestWriterCloseDrainsPendingWrites(t *testing.T) {
	gw := storage.NewMemoryGateway()
	w := storage.NewWriter(gw, nil)
	w.Enqueue(storage.KeyJobs, []byte("[1]"))
	w.Enqueue(storage.KeyJobs, []byte("[1,2]"))
	require.NoError(t, w.Close(context.Background()))

	data, found, err := gw.Load(context.Background(), storage.KeyJobs)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[1,2]", string(data))
	assert.Equal(t, 2, gw.Saves())
}
