package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/atomic"

	"pvd/internal/providers"
	"pvd/internal/store"
	"pvd/internal/structures"
)

// Loop is the long-lived monitoring task: fetch snapshot, diff, persist,
// alert, sleep. Its lifecycle is Stopped -> Running -> Stopped; Stop is
// cooperative and lets the in-flight cycle finish, so a cycle's store writes
// are never cut off halfway.
type Loop struct {
	config  *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	source  SnapshotSourceInterface
	differ  *Differencer
	store   store.VisitorStoreInterface

	running atomic.Bool
	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewLoop(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface,
	source SnapshotSourceInterface, differ *Differencer, st store.VisitorStoreInterface) *Loop {
	return &Loop{
		config:  conf,
		logger:  logger,
		metrics: metrics,
		source:  source,
		differ:  differ,
		store:   st,
	}
}

// Start launches the cycle loop. Returns false when already running.
func (l *Loop) Start() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running.Load() {
		return false
	}
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	l.running.Store(true)
	l.metrics.SetMonitoring(true)

	go l.run(l.stopCh, l.doneCh)
	l.logger.Infof(providers.TypeMonitor, "monitoring started, poll interval %s", l.config.Monitor.PollInterval)
	return true
}

// Stop requests shutdown and waits for the in-flight cycle to finish.
// Returns false when the loop was not running.
func (l *Loop) Stop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running.Load() {
		return false
	}
	close(l.stopCh)
	<-l.doneCh
	l.running.Store(false)
	l.metrics.SetMonitoring(false)
	l.logger.Infof(providers.TypeMonitor, "monitoring stopped")
	return true
}

func (l *Loop) IsRunning() bool {
	return l.running.Load()
}

func (l *Loop) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		wait := l.cycle()

		if !l.sleep(stopCh, wait) {
			return
		}
	}
}

// cycle runs one fetch-diff-persist pass and returns how long to wait
// before the next attempt. Errors never terminate the loop; only Stop does.
func (l *Loop) cycle() time.Duration {
	settings, err := l.store.Settings()
	if err != nil {
		l.logger.Errorf(providers.TypeMonitor, "cycle skipped, settings unavailable: %s", err)
		l.metrics.IncCycles("storage_error")
		l.metrics.IncStorageErrors()
		return l.config.Monitor.ErrorBackoff
	}

	start := time.Now()
	entities, err := l.source.ListCurrentEntities(context.Background())
	if err != nil {
		var rl *RateLimitedError
		if errors.As(err, &rl) {
			l.logger.Warnf(providers.TypeMonitor, "rate limited, waiting %s", rl.RetryAfter)
			l.metrics.IncCycles("rate_limited")
			l.metrics.ObserveRateLimitWait(rl.RetryAfter)
			return rl.RetryAfter
		}
		l.logger.Errorf(providers.TypeMonitor, "snapshot fetch failed: %s", err)
		l.metrics.IncCycles("transient")
		return l.config.Monitor.ErrorBackoff
	}

	diff, err := l.differ.ProcessSnapshot(entities, settings)
	if err != nil {
		// Baseline did not advance; next cycle re-classifies the same ids.
		l.logger.Errorf(providers.TypeMonitor, "cycle failed: %s", err)
		l.metrics.IncCycles("storage_error")
		l.metrics.IncStorageErrors()
		return l.config.Monitor.ErrorBackoff
	}

	l.metrics.IncCycles("ok")
	l.metrics.ObserveCycleDuration(time.Since(start))
	if count, err := l.store.CountVisitors(); err == nil {
		l.metrics.SetVisitorsTotal(count)
	}
	l.logger.Debugf(providers.TypeMonitor, "cycle done: %d new, %d returning, %d unchanged",
		len(diff.New), len(diff.Returning), len(diff.Unchanged))
	return l.config.Monitor.PollInterval
}

// sleep waits for d or until stop; returns false when stopping.
func (l *Loop) sleep(stopCh <-chan struct{}, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-stopCh:
		return false
	case <-timer.C:
		return true
	}
}
