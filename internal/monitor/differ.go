package monitor

import (
	"pvd/internal/models"
	"pvd/internal/providers"
	"pvd/internal/store"
	"pvd/internal/structures"
)

// Differencer classifies each snapshot against the previous one and drives
// all store writes for a cycle. It carries the previous ID set between
// cycles; the set only advances after every write for the cycle succeeded,
// so a failed cycle re-classifies the same entities next time instead of
// silently dropping them.
type Differencer struct {
	store      store.VisitorStoreInterface
	dispatcher AlertDispatcherInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	selfID     int64
	prev       map[int64]struct{}
}

func NewDifferencer(st store.VisitorStoreInterface, dispatcher AlertDispatcherInterface,
	logger providers.Logger, metrics providers.MetricsProviderInterface, conf *structures.Config) *Differencer {
	return &Differencer{
		store:      st,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		selfID:     conf.Monitor.SelfID,
		prev:       make(map[int64]struct{}),
	}
}

// PreviousIDs returns a copy of the current baseline. Used by tests and the
// status endpoint.
func (d *Differencer) PreviousIDs() map[int64]struct{} {
	out := make(map[int64]struct{}, len(d.prev))
	for id := range d.prev {
		out[id] = struct{}{}
	}
	return out
}

// ProcessSnapshot runs one diff-persist-alert pass. Every returned error is
// a storage error; on error the baseline is untouched.
func (d *Differencer) ProcessSnapshot(entities []*models.RawEntity, settings *models.MonitoringSettings) (*models.Diff, error) {
	entities = d.filter(entities, settings)

	current := make(map[int64]*models.RawEntity, len(entities))
	for _, e := range entities {
		current[e.ID] = e
	}

	diff := &models.Diff{}
	for id := range current {
		if _, seen := d.prev[id]; seen {
			diff.Unchanged = append(diff.Unchanged, id)
			continue
		}
		known, err := d.store.HasVisitor(id)
		if err != nil {
			return nil, err
		}
		if known {
			diff.Returning = append(diff.Returning, id)
		} else {
			diff.New = append(diff.New, id)
		}
	}
	diff.Sort()

	// Persist first: visitor upsert plus one visit per visible entity,
	// regardless of class. Attributes may have changed even for unchanged
	// entities.
	for _, e := range entities {
		if err := d.store.UpsertVisitor(e.Visitor()); err != nil {
			return nil, err
		}
		if err := d.store.RecordVisit(e.ID, models.KindPresenceCheck, 0, "unknown"); err != nil {
			return nil, err
		}
	}

	if err := d.emitAlerts(diff, current, settings); err != nil {
		return nil, err
	}

	baseline := make(map[int64]struct{}, len(current))
	for id := range current {
		baseline[id] = struct{}{}
	}
	d.prev = baseline

	d.metrics.AddClassified("new", len(diff.New))
	d.metrics.AddClassified("returning", len(diff.Returning))
	d.metrics.AddClassified("unchanged", len(diff.Unchanged))

	return diff, nil
}

// filter drops the account's own entry and, when anonymous tracking is off,
// entities that expose neither a handle nor a contact relation.
func (d *Differencer) filter(entities []*models.RawEntity, settings *models.MonitoringSettings) []*models.RawEntity {
	out := entities[:0]
	for _, e := range entities {
		if e == nil || e.ID == d.selfID {
			continue
		}
		if !settings.TrackAnonymous && e.Username == "" && !e.IsContact {
			continue
		}
		out = append(out, e)
	}
	return out
}

// emitAlerts persists and dispatches alerts for newly appeared entities.
// Gating applies to emission as a whole: a disabled kind produces no alert
// row and no dispatch, but the entity's visit is already recorded.
func (d *Differencer) emitAlerts(diff *models.Diff, current map[int64]*models.RawEntity, settings *models.MonitoringSettings) error {
	if !settings.InstantAlertsEnabled {
		return nil
	}

	emit := func(kind models.AlertKind, id int64) error {
		alert := models.NewAlert(kind, current[id].Visitor())
		if err := d.store.RecordAlert(alert); err != nil {
			return err
		}
		if err := d.dispatcher.Dispatch(alert); err != nil {
			// The alert row is already persisted and stays visible as
			// unread; delivery is retryable by the front-end.
			d.logger.Warnf(providers.TypeMonitor, "alert %d dispatch failed: %s", alert.AlertID, err)
			return nil
		}
		d.metrics.IncAlertsDispatched(string(kind))
		return nil
	}

	if settings.AlertOnNew {
		for _, id := range diff.New {
			if err := emit(models.AlertNewVisitor, id); err != nil {
				return err
			}
		}
	}
	if settings.AlertOnReturning {
		for _, id := range diff.Returning {
			if err := emit(models.AlertReturningVisitor, id); err != nil {
				return err
			}
		}
	}

	for _, id := range append(append([]int64{}, diff.New...), diff.Returning...) {
		e := current[id]
		if e.IsScam || e.IsFake {
			if err := emit(models.AlertSuspiciousFlag, id); err != nil {
				return err
			}
		}
	}
	return nil
}
