package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"pvd/internal/models"
	"pvd/internal/providers"
	"pvd/internal/structures"
)

// AlertDispatcherInterface hands alerts to the front-end transport. Dispatch
// is fire-and-forget from the core's perspective: the alert row is persisted
// before dispatch, so a failed delivery never loses the alert.
type AlertDispatcherInterface interface {
	Dispatch(alert *models.Alert) error
	OnSettingsChanged(settings *models.MonitoringSettings)
}

// NewDispatcher picks the webhook transport when one is configured and
// falls back to the log-only dispatcher otherwise.
func NewDispatcher(conf *structures.Config, logger providers.Logger) AlertDispatcherInterface {
	if conf.Alerts.WebhookURL != "" {
		return &WebhookDispatcher{
			url:    conf.Alerts.WebhookURL,
			client: &http.Client{Timeout: 10 * time.Second},
			logger: logger,
		}
	}
	return &LogDispatcher{logger: logger}
}

// LogDispatcher writes alerts to the monitor log only.
type LogDispatcher struct {
	logger providers.Logger
}

func (d *LogDispatcher) Dispatch(alert *models.Alert) error {
	d.logger.Infof(providers.TypeMonitor, "ALERT [%s] entity=%d: %s", alert.Kind, alert.EntityID, alert.Message)
	return nil
}

func (d *LogDispatcher) OnSettingsChanged(_ *models.MonitoringSettings) {}

// WebhookDispatcher POSTs alerts as JSON to the configured front-end
// endpoint.
type WebhookDispatcher struct {
	url    string
	client *http.Client
	logger providers.Logger
}

func (d *WebhookDispatcher) Dispatch(alert *models.Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	resp, err := d.client.Post(d.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}

func (d *WebhookDispatcher) OnSettingsChanged(_ *models.MonitoringSettings) {}
