package store

import (
	"database/sql"
	"sync"
	"time"

	"pvd/internal/models"
	"pvd/internal/providers"
	"pvd/internal/structures"

	_ "modernc.org/sqlite"
)

// Schema for the visitor ledger. Timestamps are stored as unix seconds so
// window queries are plain integer comparisons.
const schema = `
CREATE TABLE IF NOT EXISTS visitors (
	entity_id INTEGER PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	handle TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	is_contact INTEGER NOT NULL DEFAULT 0,
	is_mutual_contact INTEGER NOT NULL DEFAULT 0,
	is_premium INTEGER NOT NULL DEFAULT 0,
	is_verified INTEGER NOT NULL DEFAULT 0,
	is_scam INTEGER NOT NULL DEFAULT 0,
	is_fake INTEGER NOT NULL DEFAULT 0,
	bio TEXT NOT NULL DEFAULT '',
	photo_count INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS visits (
	visit_id INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_id INTEGER NOT NULL REFERENCES visitors(entity_id),
	timestamp INTEGER NOT NULL,
	interaction_kind TEXT NOT NULL DEFAULT 'presence-check',
	duration_seconds INTEGER NOT NULL DEFAULT 0,
	device_hint TEXT NOT NULL DEFAULT 'unknown'
);
CREATE INDEX IF NOT EXISTS idx_visits_ts ON visits(timestamp);
CREATE INDEX IF NOT EXISTS idx_visits_entity ON visits(entity_id);

CREATE TABLE IF NOT EXISTS daily_stats (
	date TEXT PRIMARY KEY,
	total_visitors INTEGER NOT NULL DEFAULT 0,
	new_visitors INTEGER NOT NULL DEFAULT 0,
	returning_visitors INTEGER NOT NULL DEFAULT 0,
	total_views INTEGER NOT NULL DEFAULT 0,
	peak_hour INTEGER NOT NULL DEFAULT -1
);

CREATE TABLE IF NOT EXISTS alerts (
	alert_id INTEGER PRIMARY KEY AUTOINCREMENT,
	alert_kind TEXT NOT NULL,
	entity_id INTEGER NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	is_read INTEGER NOT NULL DEFAULT 0,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_alerts_unread ON alerts(is_read) WHERE is_read = 0;

CREATE TABLE IF NOT EXISTS monitoring_settings (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	instant_alerts INTEGER NOT NULL,
	track_anonymous INTEGER NOT NULL,
	save_full_history INTEGER NOT NULL,
	alert_on_new INTEGER NOT NULL,
	alert_on_returning INTEGER NOT NULL,
	min_visit_duration INTEGER NOT NULL
);
`

const visitorColumns = `entity_id, display_name, handle, phone, is_contact, is_mutual_contact,
	is_premium, is_verified, is_scam, is_fake, bio, photo_count, created_at, updated_at`

// VisitorStore is the SQLite-backed ledger. A single RWMutex serializes
// writes; reads run concurrently and may observe a partially applied cycle,
// which the analytics contract explicitly allows.
type VisitorStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	logger providers.Logger
	now    func() time.Time
}

func NewVisitorStore(conf *structures.Config, logger providers.Logger) (VisitorStoreInterface, error) {
	return openVisitorStore(conf.Storage.Path, logger)
}

func openVisitorStore(path string, logger providers.Logger) (*VisitorStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storageErr("open", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, storageErr("pragma", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, storageErr("init schema", err)
	}

	s := &VisitorStore{db: db, logger: logger, now: time.Now}
	if err := s.ensureSettings(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *VisitorStore) ensureSettings() error {
	d := models.DefaultSettings()
	_, err := s.db.Exec(`INSERT OR IGNORE INTO monitoring_settings
		(id, instant_alerts, track_anonymous, save_full_history, alert_on_new, alert_on_returning, min_visit_duration)
		VALUES (1, ?, ?, ?, ?, ?, ?)`,
		d.InstantAlertsEnabled, d.TrackAnonymous, d.SaveFullHistory,
		d.AlertOnNew, d.AlertOnReturning, d.MinVisitDurationSeconds)
	return storageErr("ensure settings", err)
}

func (s *VisitorStore) Close() error {
	return storageErr("close", s.db.Close())
}

// UpsertVisitor inserts or refreshes a ledger row. created_at is written
// once; every repeat observation overwrites the mutable attributes and bumps
// updated_at.
func (s *VisitorStore) UpsertVisitor(v *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	_, err := s.db.Exec(`INSERT INTO visitors (`+visitorColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			display_name = excluded.display_name,
			handle = excluded.handle,
			phone = excluded.phone,
			is_contact = excluded.is_contact,
			is_mutual_contact = excluded.is_mutual_contact,
			is_premium = excluded.is_premium,
			is_verified = excluded.is_verified,
			is_scam = excluded.is_scam,
			is_fake = excluded.is_fake,
			bio = excluded.bio,
			photo_count = excluded.photo_count,
			updated_at = excluded.updated_at`,
		v.EntityID, v.DisplayName, v.Handle, v.Phone, v.IsContact, v.IsMutualContact,
		v.IsPremium, v.IsVerified, v.IsScam, v.IsFake, v.Bio, v.PhotoCount, now, now)
	return storageErr("upsert visitor", err)
}

// RecordVisit appends one presence event. The ordering constraint is
// load-bearing: a visit with no visitor row is invalid state, so the insert
// is guarded by an EXISTS probe inside the same statement.
func (s *VisitorStore) RecordVisit(entityID int64, kind models.InteractionKind, durationSeconds int, deviceHint string) error {
	if durationSeconds < 0 {
		return ErrNegativeDuration
	}
	if kind == "" {
		kind = models.KindPresenceCheck
	}
	if deviceHint == "" {
		deviceHint = "unknown"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`INSERT INTO visits (entity_id, timestamp, interaction_kind, duration_seconds, device_hint)
		SELECT ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM visitors WHERE entity_id = ?)`,
		entityID, s.now().Unix(), string(kind), durationSeconds, deviceHint, entityID)
	if err != nil {
		return storageErr("record visit", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("record visit", err)
	}
	if n == 0 {
		return ErrUnknownVisitor
	}
	return nil
}

func (s *VisitorStore) HasVisitor(entityID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRow(`SELECT 1 FROM visitors WHERE entity_id = ?`, entityID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, storageErr("has visitor", err)
	}
	return true, nil
}

func (s *VisitorStore) CountVisitors() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM visitors`).Scan(&count)
	if err != nil {
		return 0, storageErr("count visitors", err)
	}
	return count, nil
}

func (s *VisitorStore) windowStart(windowDays int) int64 {
	return s.now().AddDate(0, 0, -windowDays).Unix()
}

// ListVisitors returns ledger rows with at least one visit in the window,
// newest last visit first, ties broken by entity_id ascending. When no row
// has a visit in the window, the plain ledger is returned with zero
// aggregates, mirroring the "no visits yet" state.
func (s *VisitorStore) ListVisitors(windowDays int) ([]*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT `+prefixed("u", visitorColumns)+`,
			COUNT(v.visit_id), MIN(v.timestamp), MAX(v.timestamp)
		FROM visitors u
		JOIN visits v ON v.entity_id = u.entity_id
		WHERE v.timestamp >= ?
		GROUP BY u.entity_id
		ORDER BY MAX(v.timestamp) DESC, u.entity_id ASC`, s.windowStart(windowDays))
	if err != nil {
		return nil, storageErr("list visitors", err)
	}
	defer rows.Close()

	var visitors []*models.Visitor
	for rows.Next() {
		v, err := scanVisitorWithAggregates(rows)
		if err != nil {
			return nil, storageErr("list visitors", err)
		}
		visitors = append(visitors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list visitors", err)
	}

	if len(visitors) > 0 {
		return visitors, nil
	}
	return s.listAllVisitorsLocked()
}

func (s *VisitorStore) listAllVisitorsLocked() ([]*models.Visitor, error) {
	rows, err := s.db.Query(`SELECT ` + visitorColumns + ` FROM visitors ORDER BY entity_id ASC`)
	if err != nil {
		return nil, storageErr("list visitors", err)
	}
	defer rows.Close()

	var visitors []*models.Visitor
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, storageErr("list visitors", err)
		}
		visitors = append(visitors, v)
	}
	return visitors, storageErr("list visitors", rows.Err())
}

func (s *VisitorStore) WindowCounts(windowDays int) (*WindowCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	since := s.windowStart(windowDays)
	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Unix()

	wc := &WindowCounts{}
	queries := []struct {
		dst   *int
		query string
		arg   int64
	}{
		{&wc.TotalVisitors, `SELECT COUNT(DISTINCT entity_id) FROM visits WHERE timestamp >= ?`, since},
		{&wc.NewVisitorsToday, `SELECT COUNT(DISTINCT entity_id) FROM visits WHERE timestamp >= ?`, todayStart},
		{&wc.TotalViews, `SELECT COUNT(*) FROM visits WHERE timestamp >= ?`, since},
		{&wc.PremiumVisitors, `SELECT COUNT(DISTINCT u.entity_id) FROM visitors u
			JOIN visits v ON v.entity_id = u.entity_id WHERE u.is_premium = 1 AND v.timestamp >= ?`, since},
		{&wc.VerifiedVisitors, `SELECT COUNT(DISTINCT u.entity_id) FROM visitors u
			JOIN visits v ON v.entity_id = u.entity_id WHERE u.is_verified = 1 AND v.timestamp >= ?`, since},
	}
	for _, q := range queries {
		if err := s.db.QueryRow(q.query, q.arg).Scan(q.dst); err != nil {
			return nil, storageErr("window counts", err)
		}
	}
	return wc, nil
}

func (s *VisitorStore) VisitTimes(windowDays int) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visitTimesLocked(s.windowStart(windowDays), s.now().Unix()+1)
}

func (s *VisitorStore) visitTimesLocked(from, to int64) ([]time.Time, error) {
	rows, err := s.db.Query(`SELECT timestamp FROM visits WHERE timestamp >= ? AND timestamp < ?`, from, to)
	if err != nil {
		return nil, storageErr("visit times", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return nil, storageErr("visit times", err)
		}
		times = append(times, time.Unix(ts, 0))
	}
	return times, storageErr("visit times", rows.Err())
}

func (s *VisitorStore) ViewsBetween(from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM visits WHERE timestamp >= ? AND timestamp < ?`,
		from.Unix(), to.Unix()).Scan(&count)
	if err != nil {
		return 0, storageErr("views between", err)
	}
	return count, nil
}

func (s *VisitorStore) RecordAlert(a *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Timestamp.IsZero() {
		a.Timestamp = s.now()
	}
	res, err := s.db.Exec(`INSERT INTO alerts (alert_kind, entity_id, message, is_read, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		string(a.Kind), a.EntityID, a.Message, a.IsRead, a.Timestamp.Unix())
	if err != nil {
		return storageErr("record alert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storageErr("record alert", err)
	}
	a.AlertID = id
	return nil
}

func (s *VisitorStore) ListAlerts(unreadOnly bool) ([]*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT alert_id, alert_kind, entity_id, message, is_read, timestamp FROM alerts`
	if unreadOnly {
		query += ` WHERE is_read = 0`
	}
	query += ` ORDER BY timestamp DESC, alert_id DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, storageErr("list alerts", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		a := &models.Alert{}
		var kind string
		var ts int64
		if err := rows.Scan(&a.AlertID, &kind, &a.EntityID, &a.Message, &a.IsRead, &ts); err != nil {
			return nil, storageErr("list alerts", err)
		}
		a.Kind = models.AlertKind(kind)
		a.Timestamp = time.Unix(ts, 0)
		alerts = append(alerts, a)
	}
	return alerts, storageErr("list alerts", rows.Err())
}

func (s *VisitorStore) MarkAlertRead(alertID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE alerts SET is_read = 1 WHERE alert_id = ?`, alertID)
	if err != nil {
		return storageErr("mark alert read", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("mark alert read", err)
	}
	if n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func (s *VisitorStore) Settings() (*models.MonitoringSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := &models.MonitoringSettings{}
	err := s.db.QueryRow(`SELECT instant_alerts, track_anonymous, save_full_history,
			alert_on_new, alert_on_returning, min_visit_duration
		FROM monitoring_settings WHERE id = 1`).Scan(
		&set.InstantAlertsEnabled, &set.TrackAnonymous, &set.SaveFullHistory,
		&set.AlertOnNew, &set.AlertOnReturning, &set.MinVisitDurationSeconds)
	if err != nil {
		return nil, storageErr("load settings", err)
	}
	return set, nil
}

func (s *VisitorStore) SaveSettings(set *models.MonitoringSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`UPDATE monitoring_settings SET
			instant_alerts = ?, track_anonymous = ?, save_full_history = ?,
			alert_on_new = ?, alert_on_returning = ?, min_visit_duration = ?
		WHERE id = 1`,
		set.InstantAlertsEnabled, set.TrackAnonymous, set.SaveFullHistory,
		set.AlertOnNew, set.AlertOnReturning, set.MinVisitDurationSeconds)
	return storageErr("save settings", err)
}

// RecomputeDailyStat rebuilds the rollup row for the given calendar date
// from the visits table. Delete-then-insert inside one transaction keeps the
// rollup idempotent: re-running it for the same date yields identical values.
func (s *VisitorStore) RecomputeDailyStat(day time.Time) (*models.DailyStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	from, to := dayStart.Unix(), dayStart.AddDate(0, 0, 1).Unix()
	date := dayStart.Format("2006-01-02")

	stat := &models.DailyStat{Date: date, PeakHour: -1}

	err := s.db.QueryRow(`SELECT COUNT(DISTINCT entity_id) FROM visits WHERE timestamp >= ? AND timestamp < ?`,
		from, to).Scan(&stat.TotalVisitors)
	if err != nil {
		return nil, storageErr("daily rollup", err)
	}
	err = s.db.QueryRow(`SELECT COUNT(*) FROM visits WHERE timestamp >= ? AND timestamp < ?`,
		from, to).Scan(&stat.TotalViews)
	if err != nil {
		return nil, storageErr("daily rollup", err)
	}
	// New visitors: entities whose first-ever visit falls on this date.
	err = s.db.QueryRow(`SELECT COUNT(*) FROM (
			SELECT entity_id, MIN(timestamp) AS first_ts FROM visits GROUP BY entity_id
		) WHERE first_ts >= ? AND first_ts < ?`, from, to).Scan(&stat.NewVisitors)
	if err != nil {
		return nil, storageErr("daily rollup", err)
	}
	stat.ReturningVisitors = stat.TotalVisitors - stat.NewVisitors

	times, err := s.visitTimesLocked(from, to)
	if err != nil {
		return nil, err
	}
	var hours [24]int
	for _, t := range times {
		hours[t.Hour()]++
	}
	peak, peakCount := -1, 0
	for h, c := range hours {
		if c > peakCount {
			peak, peakCount = h, c
		}
	}
	stat.PeakHour = peak

	tx, err := s.db.Begin()
	if err != nil {
		return nil, storageErr("daily rollup", err)
	}
	if _, err := tx.Exec(`DELETE FROM daily_stats WHERE date = ?`, date); err != nil {
		tx.Rollback()
		return nil, storageErr("daily rollup", err)
	}
	_, err = tx.Exec(`INSERT INTO daily_stats (date, total_visitors, new_visitors, returning_visitors, total_views, peak_hour)
		VALUES (?, ?, ?, ?, ?, ?)`,
		stat.Date, stat.TotalVisitors, stat.NewVisitors, stat.ReturningVisitors, stat.TotalViews, stat.PeakHour)
	if err != nil {
		tx.Rollback()
		return nil, storageErr("daily rollup", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr("daily rollup", err)
	}
	return stat, nil
}

// Snapshot exports the whole ledger for archival.
func (s *VisitorStore) Snapshot() (*LedgerSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &LedgerSnapshot{ExportedAt: s.now()}

	visitors, err := s.listAllVisitorsLocked()
	if err != nil {
		return nil, err
	}
	snap.Visitors = visitors

	rows, err := s.db.Query(`SELECT visit_id, entity_id, timestamp, interaction_kind, duration_seconds, device_hint
		FROM visits ORDER BY visit_id ASC`)
	if err != nil {
		return nil, storageErr("snapshot", err)
	}
	defer rows.Close()
	for rows.Next() {
		v := &models.Visit{}
		var kind string
		var ts int64
		if err := rows.Scan(&v.VisitID, &v.EntityID, &ts, &kind, &v.DurationSeconds, &v.DeviceHint); err != nil {
			return nil, storageErr("snapshot", err)
		}
		v.Kind = models.InteractionKind(kind)
		v.Timestamp = time.Unix(ts, 0)
		snap.Visits = append(snap.Visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("snapshot", err)
	}

	alerts, err := s.listAlertsLocked()
	if err != nil {
		return nil, err
	}
	snap.Alerts = alerts

	statRows, err := s.db.Query(`SELECT date, total_visitors, new_visitors, returning_visitors, total_views, peak_hour
		FROM daily_stats ORDER BY date ASC`)
	if err != nil {
		return nil, storageErr("snapshot", err)
	}
	defer statRows.Close()
	for statRows.Next() {
		d := &models.DailyStat{}
		if err := statRows.Scan(&d.Date, &d.TotalVisitors, &d.NewVisitors, &d.ReturningVisitors, &d.TotalViews, &d.PeakHour); err != nil {
			return nil, storageErr("snapshot", err)
		}
		snap.DailyStats = append(snap.DailyStats, d)
	}
	return snap, storageErr("snapshot", statRows.Err())
}

func (s *VisitorStore) listAlertsLocked() ([]*models.Alert, error) {
	rows, err := s.db.Query(`SELECT alert_id, alert_kind, entity_id, message, is_read, timestamp
		FROM alerts ORDER BY alert_id ASC`)
	if err != nil {
		return nil, storageErr("snapshot", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		a := &models.Alert{}
		var kind string
		var ts int64
		if err := rows.Scan(&a.AlertID, &kind, &a.EntityID, &a.Message, &a.IsRead, &ts); err != nil {
			return nil, storageErr("snapshot", err)
		}
		a.Kind = models.AlertKind(kind)
		a.Timestamp = time.Unix(ts, 0)
		alerts = append(alerts, a)
	}
	return alerts, storageErr("snapshot", rows.Err())
}
