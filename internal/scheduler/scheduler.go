package scheduler

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"pvd/internal/archive"
	"pvd/internal/providers"
	"pvd/internal/store"
	"pvd/internal/structures"
)

type SchedulerInterface interface {
	Init()
	Stop()
	Rollup() error
	ExportArchive() error
}

// Scheduler owns the periodic background jobs: the daily-stat rollup and the
// ledger archive export. opsMu keeps the jobs from overlapping; each is quick
// but the archive export reads the whole ledger.
type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	store    store.VisitorStoreInterface
	archiver *archive.Archiver
	cron     *gron.Cron
	opsMu    sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Analytics.RollupInterval), func() {
		if err := s.Rollup(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while rolling up daily stats: %s", err)
			return
		}
		s.logger.Infof(providers.TypeApp, "Daily stats rolled up")
	})

	if s.config.Archive.Enabled {
		s.cron.AddFunc(gron.Every(s.config.Archive.Interval), func() {
			if err := s.ExportArchive(); err != nil {
				s.logger.Errorf(providers.TypeApp, "Error while exporting archive: %s", err)
			}
		})
	}

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Rollup recomputes today's daily-stat row and refreshes the visitor gauge.
func (s *Scheduler) Rollup() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	if _, err := s.store.RecomputeDailyStat(time.Now()); err != nil {
		return err
	}
	if count, err := s.store.CountVisitors(); err == nil {
		s.metrics.SetVisitorsTotal(count)
	}
	return nil
}

// ExportArchive writes a compressed ledger export, honoring the full-history
// setting: when the owner turned it off, no export is produced.
func (s *Scheduler) ExportArchive() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	settings, err := s.store.Settings()
	if err != nil {
		return err
	}
	if !settings.SaveFullHistory {
		s.logger.Debugf(providers.TypeApp, "Archive export skipped, full history disabled")
		return nil
	}

	fileName, err := s.archiver.Export()
	if err != nil {
		return err
	}
	s.logger.Infof(providers.TypeApp, "Exported ledger archive %s", fileName)
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface,
	st store.VisitorStoreInterface, archiver *archive.Archiver) SchedulerInterface {
	return &Scheduler{
		config:   config,
		logger:   logger,
		metrics:  metrics,
		store:    st,
		archiver: archiver,
	}
}
