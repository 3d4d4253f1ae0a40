package services

import (
	"pvd/internal/models"
	"pvd/internal/monitor"
	"pvd/internal/providers"
	"pvd/internal/store"
)

type MonitorServiceInterface interface {
	StartMonitoring() bool
	StopMonitoring() bool
	IsMonitoring() bool
	Settings() (*models.MonitoringSettings, error)
	UpdateSettings(s *models.MonitoringSettings) error
	Alerts(unreadOnly bool) ([]*models.Alert, error)
	MarkAlertRead(alertID int64) error
}

// MonitorService is the control facade over the loop and the alert surface.
type MonitorService struct {
	loop       *monitor.Loop
	store      store.VisitorStoreInterface
	dispatcher monitor.AlertDispatcherInterface
	logger     providers.Logger
}

func NewMonitorService(loop *monitor.Loop, st store.VisitorStoreInterface,
	dispatcher monitor.AlertDispatcherInterface, logger providers.Logger) MonitorServiceInterface {
	return &MonitorService{
		loop:       loop,
		store:      st,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (ms *MonitorService) StartMonitoring() bool {
	return ms.loop.Start()
}

func (ms *MonitorService) StopMonitoring() bool {
	return ms.loop.Stop()
}

func (ms *MonitorService) IsMonitoring() bool {
	return ms.loop.IsRunning()
}

func (ms *MonitorService) Settings() (*models.MonitoringSettings, error) {
	return ms.store.Settings()
}

// UpdateSettings persists the new record and notifies the dispatcher so the
// gating flags take effect without restarting the loop.
func (ms *MonitorService) UpdateSettings(s *models.MonitoringSettings) error {
	if err := ms.store.SaveSettings(s); err != nil {
		return err
	}
	ms.dispatcher.OnSettingsChanged(s)
	ms.logger.Infof(providers.TypeApp, "monitoring settings updated")
	return nil
}

func (ms *MonitorService) Alerts(unreadOnly bool) ([]*models.Alert, error) {
	return ms.store.ListAlerts(unreadOnly)
}

func (ms *MonitorService) MarkAlertRead(alertID int64) error {
	return ms.store.MarkAlertRead(alertID)
}
