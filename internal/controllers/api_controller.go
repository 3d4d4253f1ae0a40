package controllers

import (
	"errors"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"pvd/internal/models"
	"pvd/internal/providers"
	"pvd/internal/services"
	"pvd/internal/store"
	"pvd/internal/structures"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger    providers.Logger
	analytics services.AnalyticsServiceInterface
	monitor   services.MonitorServiceInterface
	cache     providers.CacheProviderInterface
	config    *structures.Config
}

func NewApiController(logger providers.Logger, analytics services.AnalyticsServiceInterface,
	monitor services.MonitorServiceInterface, cache providers.CacheProviderInterface,
	conf *structures.Config) *ApiController {
	return &ApiController{
		logger:    logger,
		analytics: analytics,
		monitor:   monitor,
		cache:     cache,
		config:    conf,
	}
}

// windowDays reads the ?days= query parameter, falling back to the configured
// default and clamped to the configured maximum.
func (ac *ApiController) windowDays(r *http.Request) int {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return ac.config.Analytics.DefaultWindowDays
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return ac.config.Analytics.DefaultWindowDays
	}
	if days > ac.config.Analytics.MaxWindowDays {
		return ac.config.Analytics.MaxWindowDays
	}
	return days
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "compute %s failed: %s", cacheKey, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) GetStats(w http.ResponseWriter, r *http.Request) {
	days := ac.windowDays(r)
	ac.serveFromCacheOrCompute(w, "stats:"+strconv.Itoa(days), func() (any, error) {
		return ac.analytics.ComputeStats(days)
	})
}

func (ac *ApiController) GetReport(w http.ResponseWriter, r *http.Request) {
	days := ac.windowDays(r)
	ac.serveFromCacheOrCompute(w, "report:"+strconv.Itoa(days), func() (any, error) {
		return ac.analytics.GenerateReport(days)
	})
}

func (ac *ApiController) GetVisitors(w http.ResponseWriter, r *http.Request) {
	days := ac.windowDays(r)
	ac.serveFromCacheOrCompute(w, "visitors:"+strconv.Itoa(days), func() (any, error) {
		return ac.analytics.ListVisitors(days)
	})
}

// GetAlerts is never cached; read state must be current.
func (ac *ApiController) GetAlerts(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"
	alerts, err := ac.monitor.Alerts(unreadOnly)
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "list alerts failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (ac *ApiController) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		AlertID int64 `json:"alert_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := ac.monitor.MarkAlertRead(payload.AlertID); err != nil {
		if errors.Is(err, store.ErrAlertNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		ac.logger.Errorf(providers.TypePost, "mark alert %d read failed: %s", payload.AlertID, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Settings serves both methods on /settings.
func (ac *ApiController) Settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ac.GetSettings(w, r)
	case http.MethodPost:
		ac.UpdateSettings(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (ac *ApiController) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := ac.monitor.Settings()
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "load settings failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (ac *ApiController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	settings := models.DefaultSettings()
	if err := json.NewDecoder(r.Body).Decode(settings); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if settings.MinVisitDurationSeconds < 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := ac.monitor.UpdateSettings(settings); err != nil {
		ac.logger.Errorf(providers.TypePost, "save settings failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (ac *ApiController) StartMonitoring(w http.ResponseWriter, r *http.Request) {
	started := ac.monitor.StartMonitoring()
	writeJSON(w, http.StatusOK, map[string]bool{"monitoring": true, "changed": started})
}

func (ac *ApiController) StopMonitoring(w http.ResponseWriter, r *http.Request) {
	stopped := ac.monitor.StopMonitoring()
	writeJSON(w, http.StatusOK, map[string]bool{"monitoring": false, "changed": stopped})
}

func (ac *ApiController) MonitorStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"monitoring":    ac.monitor.IsMonitoring(),
		"poll_interval": ac.config.Monitor.PollInterval.String(),
	})
}
