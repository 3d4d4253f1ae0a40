package monitor

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvd/internal/models"
	"pvd/internal/store"
	"pvd/internal/structures"
	"pvd/internal/testutil"
)

func testConfig(t *testing.T) *structures.Config {
	return &structures.Config{
		Monitor: structures.MonitorConfig{
			SelfID: 1000,
		},
		Storage: structures.StorageConfig{
			Path: filepath.Join(t.TempDir(), "ledger.db"),
		},
	}
}

func newTestStore(t *testing.T, conf *structures.Config) store.VisitorStoreInterface {
	t.Helper()
	st, err := store.NewVisitorStore(conf, &testutil.MockLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func entity(id int64) *models.RawEntity {
	return &models.RawEntity{ID: id, FirstName: "Entity", Username: "entity"}
}

func TestDifferencer_ClassifiesAcrossCycles(t *testing.T) {
	conf := testConfig(t)
	st := newTestStore(t, conf)
	dispatcher := &testutil.MockDispatcher{}
	d := NewDifferencer(st, dispatcher, &testutil.MockLogger{}, &testutil.MockMetrics{}, conf)
	settings := models.DefaultSettings()

	// Cycle 1: {A, B} against an empty baseline and empty ledger.
	diff, err := d.ProcessSnapshot([]*models.RawEntity{entity(1), entity(2)}, settings)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, diff.New)
	assert.Empty(t, diff.Returning)
	assert.Empty(t, diff.Unchanged)

	// Cycle 2: {B, C}. B carried over, C never seen.
	diff, err = d.ProcessSnapshot([]*models.RawEntity{entity(2), entity(3)}, settings)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, diff.New)
	assert.Empty(t, diff.Returning)
	assert.Equal(t, []int64{2}, diff.Unchanged)

	// Cycle 3: {A, B, C}. A left and came back; it is in the ledger but not
	// in the baseline, so it is returning rather than new.
	diff, err = d.ProcessSnapshot([]*models.RawEntity{entity(1), entity(2), entity(3)}, settings)
	require.NoError(t, err)
	assert.Empty(t, diff.New)
	assert.Equal(t, []int64{1}, diff.Returning)
	assert.Equal(t, []int64{2, 3}, diff.Unchanged)
}

func TestDifferencer_PartitionIsExact(t *testing.T) {
	conf := testConfig(t)
	st := newTestStore(t, conf)
	d := NewDifferencer(st, &testutil.MockDispatcher{}, &testutil.MockLogger{}, &testutil.MockMetrics{}, conf)
	settings := models.DefaultSettings()

	_, err := d.ProcessSnapshot([]*models.RawEntity{entity(1), entity(2)}, settings)
	require.NoError(t, err)

	diff, err := d.ProcessSnapshot([]*models.RawEntity{entity(2), entity(3), entity(4)}, settings)
	require.NoError(t, err)

	assert.Equal(t, 3, diff.Total())
	seen := map[int64]int{}
	for _, ids := range [][]int64{diff.New, diff.Returning, diff.Unchanged} {
		for _, id := range ids {
			seen[id]++
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "entity %d classified %d times", id, n)
	}
}

func TestDifferencer_RecordsVisitForEveryClass(t *testing.T) {
	conf := testConfig(t)
	st := newTestStore(t, conf)
	d := NewDifferencer(st, &testutil.MockDispatcher{}, &testutil.MockLogger{}, &testutil.MockMetrics{}, conf)
	settings := models.DefaultSettings()

	_, err := d.ProcessSnapshot([]*models.RawEntity{entity(1)}, settings)
	require.NoError(t, err)
	_, err = d.ProcessSnapshot([]*models.RawEntity{entity(1)}, settings)
	require.NoError(t, err)

	// One visit per cycle, including the unchanged one.
	snap, err := st.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Visits, 2)
}

func TestDifferencer_FiltersSelfAndAnonymous(t *testing.T) {
	conf := testConfig(t)
	st := newTestStore(t, conf)
	d := NewDifferencer(st, &testutil.MockDispatcher{}, &testutil.MockLogger{}, &testutil.MockMetrics{}, conf)

	settings := models.DefaultSettings()
	settings.TrackAnonymous = false

	anonymous := &models.RawEntity{ID: 7, FirstName: "NoHandle"}
	anonymousContact := &models.RawEntity{ID: 8, FirstName: "Contact", IsContact: true}
	self := entity(conf.Monitor.SelfID)

	diff, err := d.ProcessSnapshot([]*models.RawEntity{self, anonymous, anonymousContact, entity(2)}, settings)
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 8}, diff.New)

	known, err := st.HasVisitor(7)
	require.NoError(t, err)
	assert.False(t, known)
	known, err = st.HasVisitor(conf.Monitor.SelfID)
	require.NoError(t, err)
	assert.False(t, known)
}

func TestDifferencer_AlertGating(t *testing.T) {
	conf := testConfig(t)
	st := newTestStore(t, conf)
	dispatcher := &testutil.MockDispatcher{}
	d := NewDifferencer(st, dispatcher, &testutil.MockLogger{}, &testutil.MockMetrics{}, conf)

	// Defaults: alert_on_new on, alert_on_returning off.
	settings := models.DefaultSettings()

	_, err := d.ProcessSnapshot([]*models.RawEntity{entity(1)}, settings)
	require.NoError(t, err)
	_, err = d.ProcessSnapshot([]*models.RawEntity{}, settings)
	require.NoError(t, err)
	_, err = d.ProcessSnapshot([]*models.RawEntity{entity(1)}, settings)
	require.NoError(t, err)

	// Only the first appearance alerted; the return was gated off, and the
	// gate suppressed the row as well as the dispatch.
	dispatched := dispatcher.Dispatched()
	require.Len(t, dispatched, 1)
	assert.Equal(t, models.AlertNewVisitor, dispatched[0].Kind)

	rows, err := st.ListAlerts(false)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDifferencer_MasterSwitchSuppressesAll(t *testing.T) {
	conf := testConfig(t)
	st := newTestStore(t, conf)
	dispatcher := &testutil.MockDispatcher{}
	d := NewDifferencer(st, dispatcher, &testutil.MockLogger{}, &testutil.MockMetrics{}, conf)

	settings := models.DefaultSettings()
	settings.InstantAlertsEnabled = false

	scam := entity(3)
	scam.IsScam = true
	_, err := d.ProcessSnapshot([]*models.RawEntity{entity(1), scam}, settings)
	require.NoError(t, err)

	assert.Empty(t, dispatcher.Dispatched())
	rows, err := st.ListAlerts(false)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Visits are recorded regardless of alert gating.
	snap, err := st.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Visits, 2)
}

func TestDifferencer_SuspiciousFlagAlert(t *testing.T) {
	conf := testConfig(t)
	st := newTestStore(t, conf)
	dispatcher := &testutil.MockDispatcher{}
	d := NewDifferencer(st, dispatcher, &testutil.MockLogger{}, &testutil.MockMetrics{}, conf)
	settings := models.DefaultSettings()

	scam := entity(3)
	scam.IsScam = true
	_, err := d.ProcessSnapshot([]*models.RawEntity{scam}, settings)
	require.NoError(t, err)

	kinds := map[models.AlertKind]bool{}
	for _, a := range dispatcher.Dispatched() {
		kinds[a.Kind] = true
	}
	assert.True(t, kinds[models.AlertNewVisitor])
	assert.True(t, kinds[models.AlertSuspiciousFlag])
}

func TestDifferencer_DispatchFailureKeepsRow(t *testing.T) {
	conf := testConfig(t)
	st := newTestStore(t, conf)
	dispatcher := &testutil.MockDispatcher{DispatchErr: errors.New("webhook down")}
	d := NewDifferencer(st, dispatcher, &testutil.MockLogger{}, &testutil.MockMetrics{}, conf)

	_, err := d.ProcessSnapshot([]*models.RawEntity{entity(1)}, models.DefaultSettings())
	require.NoError(t, err)

	rows, err := st.ListAlerts(true)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

// flakyStore fails RecordVisit after a set number of successes.
type flakyStore struct {
	store.VisitorStoreInterface
	allow int
}

func (f *flakyStore) RecordVisit(entityID int64, kind models.InteractionKind, durationSeconds int, deviceHint string) error {
	if f.allow <= 0 {
		return &store.StorageError{Op: "record visit", Err: errors.New("disk full")}
	}
	f.allow--
	return f.VisitorStoreInterface.RecordVisit(entityID, kind, durationSeconds, deviceHint)
}

func TestDifferencer_BaselineUntouchedOnStorageError(t *testing.T) {
	conf := testConfig(t)
	st := newTestStore(t, conf)
	flaky := &flakyStore{VisitorStoreInterface: st, allow: 1}
	d := NewDifferencer(flaky, &testutil.MockDispatcher{}, &testutil.MockLogger{}, &testutil.MockMetrics{}, conf)
	settings := models.DefaultSettings()

	_, err := d.ProcessSnapshot([]*models.RawEntity{entity(1), entity(2)}, settings)
	require.Error(t, err)
	assert.Empty(t, d.PreviousIDs())

	// After the failure clears, the same snapshot classifies from scratch.
	flaky.allow = 2
	diff, err := d.ProcessSnapshot([]*models.RawEntity{entity(1), entity(2)}, settings)
	require.NoError(t, err)
	assert.Empty(t, diff.Unchanged)
	assert.Len(t, d.PreviousIDs(), 2)
}
