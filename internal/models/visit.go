package models

import "time"

// InteractionKind classifies how a presence event was produced.
type InteractionKind string

const (
	KindPresenceCheck InteractionKind = "presence-check"
	KindManualScan    InteractionKind = "manual-scan"
)

// Visit is one append-only presence event for a ledger entity.
type Visit struct {
	VisitID         int64           `json:"visit_id"`
	EntityID        int64           `json:"entity_id"`
	Timestamp       time.Time       `json:"timestamp"`
	Kind            InteractionKind `json:"interaction_kind"`
	DurationSeconds int             `json:"duration_seconds"`
	DeviceHint      string          `json:"device_hint"`
}

// DailyStat is the per-date rollup cached in the ledger. It is always
// recomputable from the visits table; re-running the rollup for the same
// date yields identical values.
type DailyStat struct {
	Date              string `json:"date"`
	TotalVisitors     int    `json:"total_visitors"`
	NewVisitors       int    `json:"new_visitors"`
	ReturningVisitors int    `json:"returning_visitors"`
	TotalViews        int    `json:"total_views"`
	PeakHour          int    `json:"peak_hour"`
}
