package testutil

import (
	"context"
	"sync"
	"time"

	"pvd/internal/models"
	"pvd/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu               sync.Mutex
	Requests         int
	CacheHits        int
	CacheMisses      int
	Cycles           map[string]int
	Classified       map[string]int
	AlertsDispatched map[string]int
	StorageErrors    int
	RateLimitWaits   []time.Duration
	VisitorsTotal    int
	Monitoring       bool
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncCycles(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Cycles == nil {
		m.Cycles = make(map[string]int)
	}
	m.Cycles[outcome]++
}

func (m *MockMetrics) ObserveCycleDuration(_ time.Duration) {}

func (m *MockMetrics) AddClassified(class string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Classified == nil {
		m.Classified = make(map[string]int)
	}
	m.Classified[class] += n
}

func (m *MockMetrics) IncAlertsDispatched(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AlertsDispatched == nil {
		m.AlertsDispatched = make(map[string]int)
	}
	m.AlertsDispatched[kind]++
}

func (m *MockMetrics) IncStorageErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StorageErrors++
}

func (m *MockMetrics) ObserveRateLimitWait(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RateLimitWaits = append(m.RateLimitWaits, d)
}

func (m *MockMetrics) SetVisitorsTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VisitorsTotal = count
}

func (m *MockMetrics) SetMonitoring(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Monitoring = active
}

func (m *MockMetrics) CycleCount(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Cycles[outcome]
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockSource implements monitor.SnapshotSourceInterface. Each call pops the
// next queued result; when the queue is empty the last snapshot repeats.
type MockSource struct {
	mu        sync.Mutex
	Snapshots [][]*models.RawEntity
	Errs      []error
	Calls     int
	last      []*models.RawEntity
}

func (m *MockSource) ListCurrentEntities(_ context.Context) ([]*models.RawEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++

	if len(m.Errs) > 0 {
		err := m.Errs[0]
		m.Errs = m.Errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(m.Snapshots) > 0 {
		m.last = m.Snapshots[0]
		m.Snapshots = m.Snapshots[1:]
	}
	return m.last, nil
}

// MockDispatcher implements monitor.AlertDispatcherInterface and records
// every dispatched alert.
type MockDispatcher struct {
	mu              sync.Mutex
	Alerts          []*models.Alert
	SettingsChanges []*models.MonitoringSettings
	DispatchErr     error
}

func (m *MockDispatcher) Dispatch(alert *models.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DispatchErr != nil {
		return m.DispatchErr
	}
	m.Alerts = append(m.Alerts, alert)
	return nil
}

func (m *MockDispatcher) OnSettingsChanged(s *models.MonitoringSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SettingsChanges = append(m.SettingsChanges, s)
}

func (m *MockDispatcher) Dispatched() []*models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Alert, len(m.Alerts))
	copy(out, m.Alerts)
	return out
}

// MockCompressor implements archive.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}
