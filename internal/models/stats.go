package models

// MonitoringSettings is the singleton configuration record gating alert
// emission. Created with defaults on first run, mutated only through the
// settings surface, read once per monitoring cycle.
type MonitoringSettings struct {
	InstantAlertsEnabled    bool `json:"instant_alerts_enabled"`
	TrackAnonymous          bool `json:"track_anonymous"`
	SaveFullHistory         bool `json:"save_full_history"`
	AlertOnNew              bool `json:"alert_on_new"`
	AlertOnReturning        bool `json:"alert_on_returning"`
	MinVisitDurationSeconds int  `json:"min_visit_duration_seconds"`
}

// DefaultSettings returns the first-run settings record.
func DefaultSettings() *MonitoringSettings {
	return &MonitoringSettings{
		InstantAlertsEnabled:    true,
		TrackAnonymous:          true,
		SaveFullHistory:         true,
		AlertOnNew:              true,
		AlertOnReturning:        false,
		MinVisitDurationSeconds: 5,
	}
}

// ProfileStats is the windowed statistics shape served by the analytics
// engine.
type ProfileStats struct {
	TotalVisitors     int     `json:"total_visitors"`
	NewVisitorsToday  int     `json:"new_visitors_today"`
	ReturningVisitors int     `json:"returning_visitors"`
	PremiumVisitors   int     `json:"premium_visitors"`
	VerifiedVisitors  int     `json:"verified_visitors"`
	TotalViews        int     `json:"total_views"`
	AverageDailyViews float64 `json:"average_daily_views"`

	// PeakVisitHour is -1 and MostActiveDay empty when the window holds no
	// visits; both are bucketed from actual visit timestamps.
	PeakVisitHour int    `json:"peak_visit_hour"`
	MostActiveDay string `json:"most_active_day"`

	// VisitorGrowthRate compares views in this window against the preceding
	// window of equal length, in percent. Zero when the prior window is empty.
	VisitorGrowthRate float64 `json:"visitor_growth_rate"`

	// VisitorCountries is always empty: the platform exposes no locale
	// signal for dialog entries.
	VisitorCountries map[string]int `json:"visitor_countries"`
}

type ReportSummary struct {
	TotalVisitors        int     `json:"total_visitors"`
	TotalViews           int     `json:"total_views"`
	AverageDailyVisitors float64 `json:"average_daily_visitors"`
	GrowthRate           float64 `json:"growth_rate"`
}

type VisitorTypeBreakdown struct {
	Premium    int `json:"premium_users"`
	Verified   int `json:"verified_users"`
	Contacts   int `json:"contacts"`
	Suspicious int `json:"suspicious"`
}

type ActivityPatterns struct {
	MostActiveDay     string `json:"most_active_day"`
	PeakHour          int    `json:"peak_hour"`
	RecurringVisitors int    `json:"recurring_visitors"`
}

// AnalyticsReport composes windowed stats with the visitor listing.
type AnalyticsReport struct {
	WindowDays  int                  `json:"window_days"`
	Summary     ReportSummary        `json:"summary"`
	Types       VisitorTypeBreakdown `json:"visitor_types"`
	Activity    ActivityPatterns     `json:"activity_patterns"`
	TopVisitors []*Visitor           `json:"top_visitors"`
}
