package scheduler

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestSnapshotChanged(t *testing.T) {
	s := New(testLogger(), time.Minute)
	path := filepath.Join(t.TempDir(), "card.csv")
	require.NoError(t, os.WriteFile(path, []byte("race,program\n1,1\n"), 0o644))

	changed, hash, err := s.snapshotChanged(path)
	require.NoError(t, err)
	assert.True(t, changed, "first sighting always counts as changed")
	require.NotEmpty(t, hash)

	// Only a successful run records the hash; until then the file keeps
	// reporting as changed.
	changed, _, err = s.snapshotChanged(path)
	require.NoError(t, err)
	assert.True(t, changed)

	s.seen.SetDefault(cacheKey(path), hash)
	changed, _, err = s.snapshotChanged(path)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte("race,program\n1,2\n"), 0o644))
	changed, _, err = s.snapshotChanged(path)
	require.NoError(t, err)
	assert.True(t, changed, "new content invalidates the cached hash")
}

func TestSnapshotChangedMissingFile(t *testing.T) {
	s := New(testLogger(), time.Minute)
	_, _, err := s.snapshotChanged(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestSchedulerLifecycle(t *testing.T) {
	s := New(testLogger(), time.Minute)

	err := s.Start()
	assert.Error(t, err, "starting with no jobs is an error")

	noop := func(ctx context.Context, path string) error { return nil }
	require.NoError(t, s.ScheduleCardRefresh("@every 1h", "card.csv", noop))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.False(t, s.NextRun().IsZero())

	err = s.ScheduleCardRefresh("@every 1h", "card.csv", noop)
	assert.Error(t, err, "cannot add jobs while running")

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop(), "stopping twice is harmless")
}

func TestScheduleCardRefreshRejectsBadExpression(t *testing.T) {
	s := New(testLogger(), time.Minute)
	err := s.ScheduleCardRefresh("not-a-cron-spec", "card.csv", func(ctx context.Context, path string) error { return nil })
	assert.Error(t, err)
}
