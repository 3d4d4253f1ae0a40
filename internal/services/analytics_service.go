package services

import (
	"sort"
	"time"

	"pvd/internal/models"
	"pvd/internal/store"
)

type AnalyticsServiceInterface interface {
	ComputeStats(windowDays int) (*models.ProfileStats, error)
	GenerateReport(windowDays int) (*models.AnalyticsReport, error)
	ListVisitors(windowDays int) ([]*models.Visitor, error)
}

// AnalyticsService derives windowed statistics from the store's raw counts.
// The store provides counts; all derived math lives here.
type AnalyticsService struct {
	store store.VisitorStoreInterface
	now   func() time.Time
}

func NewAnalyticsService(st store.VisitorStoreInterface) AnalyticsServiceInterface {
	return &AnalyticsService{store: st, now: time.Now}
}

func (as *AnalyticsService) ListVisitors(windowDays int) ([]*models.Visitor, error) {
	return as.store.ListVisitors(windowDays)
}

func (as *AnalyticsService) ComputeStats(windowDays int) (*models.ProfileStats, error) {
	counts, err := as.store.WindowCounts(windowDays)
	if err != nil {
		return nil, err
	}

	stats := &models.ProfileStats{
		TotalVisitors:    counts.TotalVisitors,
		NewVisitorsToday: counts.NewVisitorsToday,
		// Floor-clamped approximation, not a disjoint-set count.
		ReturningVisitors: max(0, counts.TotalVisitors-counts.NewVisitorsToday),
		PremiumVisitors:   counts.PremiumVisitors,
		VerifiedVisitors:  counts.VerifiedVisitors,
		TotalViews:        counts.TotalViews,
		AverageDailyViews: float64(counts.TotalViews) / float64(max(windowDays, 1)),
		PeakVisitHour:     -1,
		VisitorCountries:  map[string]int{},
	}

	times, err := as.store.VisitTimes(windowDays)
	if err != nil {
		return nil, err
	}
	stats.PeakVisitHour, stats.MostActiveDay = activityBuckets(times)

	growth, err := as.growthRate(windowDays, counts.TotalViews)
	if err != nil {
		return nil, err
	}
	stats.VisitorGrowthRate = growth

	return stats, nil
}

// growthRate compares views in the current window with the preceding window
// of equal length. Zero when the prior window has no views; there is no
// fabricated baseline.
func (as *AnalyticsService) growthRate(windowDays, currentViews int) (float64, error) {
	days := max(windowDays, 1)
	now := as.now()
	windowStart := now.AddDate(0, 0, -days)
	prevStart := windowStart.AddDate(0, 0, -days)

	prevViews, err := as.store.ViewsBetween(prevStart, windowStart)
	if err != nil {
		return 0, err
	}
	if prevViews == 0 {
		return 0, nil
	}
	return float64(currentViews-prevViews) / float64(prevViews) * 100, nil
}

// activityBuckets computes the peak hour and the most active weekday from
// actual visit timestamps. No visits yields (-1, "").
func activityBuckets(times []time.Time) (int, string) {
	if len(times) == 0 {
		return -1, ""
	}

	var hours [24]int
	var weekdays [7]int
	for _, t := range times {
		hours[t.Hour()]++
		weekdays[int(t.Weekday())]++
	}

	peakHour, peakCount := -1, 0
	for h, c := range hours {
		if c > peakCount {
			peakHour, peakCount = h, c
		}
	}

	topDay, topCount := 0, 0
	for d, c := range weekdays {
		if c > topCount {
			topDay, topCount = d, c
		}
	}
	return peakHour, time.Weekday(topDay).String()
}

func (as *AnalyticsService) GenerateReport(windowDays int) (*models.AnalyticsReport, error) {
	stats, err := as.ComputeStats(windowDays)
	if err != nil {
		return nil, err
	}
	visitors, err := as.store.ListVisitors(windowDays)
	if err != nil {
		return nil, err
	}

	report := &models.AnalyticsReport{
		WindowDays: windowDays,
		Summary: models.ReportSummary{
			TotalVisitors:        len(visitors),
			TotalViews:           stats.TotalViews,
			AverageDailyVisitors: float64(len(visitors)) / float64(max(windowDays, 1)),
			GrowthRate:           stats.VisitorGrowthRate,
		},
		Activity: models.ActivityPatterns{
			MostActiveDay: stats.MostActiveDay,
			PeakHour:      stats.PeakVisitHour,
		},
	}

	for _, v := range visitors {
		if v.IsPremium {
			report.Types.Premium++
		}
		if v.IsVerified {
			report.Types.Verified++
		}
		if v.IsContact {
			report.Types.Contacts++
		}
		if v.Suspicious() {
			report.Types.Suspicious++
		}
		if v.VisitCount > 1 {
			report.Activity.RecurringVisitors++
		}
	}

	report.TopVisitors = topVisitors(visitors, 10)
	return report, nil
}

// topVisitors ranks by visit count descending, ties broken by the most
// recent last visit.
func topVisitors(visitors []*models.Visitor, n int) []*models.Visitor {
	ranked := make([]*models.Visitor, len(visitors))
	copy(ranked, visitors)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].VisitCount != ranked[j].VisitCount {
			return ranked[i].VisitCount > ranked[j].VisitCount
		}
		return ranked[i].LastVisit.After(ranked[j].LastVisit)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
