package store

import (
	"time"

	"pvd/internal/models"
)

// WindowCounts are the raw counts the analytics engine derives its math
// from. All counts cover [now - windowDays, now].
type WindowCounts struct {
	TotalVisitors    int
	NewVisitorsToday int
	PremiumVisitors  int
	VerifiedVisitors int
	TotalViews       int
}

// LedgerSnapshot is the full-ledger export shape consumed by the archiver.
type LedgerSnapshot struct {
	ExportedAt time.Time           `json:"exported_at"`
	Visitors   []*models.Visitor   `json:"visitors"`
	Visits     []*models.Visit     `json:"visits"`
	Alerts     []*models.Alert     `json:"alerts"`
	DailyStats []*models.DailyStat `json:"daily_stats"`
}

// VisitorStoreInterface is the single owner of all persisted rows. Writes
// are serialized; reads may run concurrently with writes at read-committed
// consistency.
type VisitorStoreInterface interface {
	UpsertVisitor(v *models.Visitor) error
	RecordVisit(entityID int64, kind models.InteractionKind, durationSeconds int, deviceHint string) error
	HasVisitor(entityID int64) (bool, error)
	CountVisitors() (int, error)

	ListVisitors(windowDays int) ([]*models.Visitor, error)
	WindowCounts(windowDays int) (*WindowCounts, error)
	VisitTimes(windowDays int) ([]time.Time, error)
	ViewsBetween(from, to time.Time) (int, error)

	RecordAlert(a *models.Alert) error
	ListAlerts(unreadOnly bool) ([]*models.Alert, error)
	MarkAlertRead(alertID int64) error

	Settings() (*models.MonitoringSettings, error)
	SaveSettings(s *models.MonitoringSettings) error

	RecomputeDailyStat(day time.Time) (*models.DailyStat, error)
	Snapshot() (*LedgerSnapshot, error)

	Close() error
}
