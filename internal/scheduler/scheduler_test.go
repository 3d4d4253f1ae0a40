package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvd/internal/archive"
	"pvd/internal/models"
	"pvd/internal/store"
	"pvd/internal/structures"
	"pvd/internal/testutil"
)

func testConfig(t *testing.T) *structures.Config {
	dir := t.TempDir()
	return &structures.Config{
		Storage: structures.StorageConfig{Path: filepath.Join(dir, "ledger.db")},
		Analytics: structures.AnalyticsConfig{
			RollupInterval: time.Hour,
		},
		Archive: structures.ArchiveConfig{
			Enabled:   true,
			Dir:       filepath.Join(dir, "archive"),
			Interval:  time.Hour,
			Retention: 3,
		},
	}
}

func newTestScheduler(t *testing.T) (SchedulerInterface, store.VisitorStoreInterface, *testutil.MockMetrics, *structures.Config) {
	t.Helper()
	conf := testConfig(t)
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}

	st, err := store.NewVisitorStore(conf, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	archiver := archive.NewArchiver(conf, &testutil.MockCompressor{}, st, logger)
	return NewScheduler(conf, logger, metrics, st, archiver), st, metrics, conf
}

func TestScheduler_Rollup(t *testing.T) {
	s, st, metrics, _ := newTestScheduler(t)

	require.NoError(t, st.UpsertVisitor(&models.Visitor{EntityID: 1}))
	require.NoError(t, st.RecordVisit(1, models.KindPresenceCheck, 0, ""))

	require.NoError(t, s.Rollup())

	snap, err := st.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.DailyStats, 1)
	assert.Equal(t, time.Now().Format("2006-01-02"), snap.DailyStats[0].Date)
	assert.Equal(t, 1, snap.DailyStats[0].TotalVisitors)

	assert.Equal(t, 1, metrics.VisitorsTotal)
}

func TestScheduler_ExportArchive(t *testing.T) {
	s, _, _, conf := newTestScheduler(t)

	require.NoError(t, s.ExportArchive())

	matches, err := filepath.Glob(filepath.Join(conf.Archive.Dir, "ledger-*"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestScheduler_ExportSkippedWithoutFullHistory(t *testing.T) {
	s, st, _, conf := newTestScheduler(t)

	settings := models.DefaultSettings()
	settings.SaveFullHistory = false
	require.NoError(t, st.SaveSettings(settings))

	require.NoError(t, s.ExportArchive())

	matches, err := filepath.Glob(filepath.Join(conf.Archive.Dir, "ledger-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestScheduler_InitStop(t *testing.T) {
	s, _, _, _ := newTestScheduler(t)

	s.Init()
	s.Stop()
	// Stop on a never-initialized scheduler is also safe.
	fresh, _, _, _ := newTestScheduler(t)
	fresh.Stop()
}
