package monitor

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvd/internal/models"
	"pvd/internal/structures"
	"pvd/internal/testutil"
)

func TestNewDispatcher_PicksTransport(t *testing.T) {
	logger := &testutil.MockLogger{}

	conf := &structures.Config{}
	assert.IsType(t, &LogDispatcher{}, NewDispatcher(conf, logger))

	conf.Alerts.WebhookURL = "http://localhost:9/hook"
	assert.IsType(t, &WebhookDispatcher{}, NewDispatcher(conf, logger))
}

func TestLogDispatcher_Dispatch(t *testing.T) {
	logger := &testutil.MockLogger{}
	d := &LogDispatcher{logger: logger}

	alert := models.NewAlert(models.AlertNewVisitor, &models.Visitor{EntityID: 7, DisplayName: "Ada"})
	require.NoError(t, d.Dispatch(alert))
	assert.NotEmpty(t, logger.Logs)
}

func TestWebhookDispatcher_PostsAlert(t *testing.T) {
	var mu sync.Mutex
	var received *models.Alert
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		received = &models.Alert{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(received))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
	}))
	defer srv.Close()

	conf := &structures.Config{}
	conf.Alerts.WebhookURL = srv.URL
	d := NewDispatcher(conf, &testutil.MockLogger{})

	alert := models.NewAlert(models.AlertSuspiciousFlag, &models.Visitor{EntityID: 7, DisplayName: "Ada", IsScam: true})
	require.NoError(t, d.Dispatch(alert))

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, received)
	assert.Equal(t, models.AlertSuspiciousFlag, received.Kind)
	assert.Equal(t, int64(7), received.EntityID)
	assert.Contains(t, received.Message, "[scam]")
}

func TestWebhookDispatcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	conf := &structures.Config{}
	conf.Alerts.WebhookURL = srv.URL
	d := NewDispatcher(conf, &testutil.MockLogger{})

	err := d.Dispatch(models.NewAlert(models.AlertNewVisitor, &models.Visitor{EntityID: 1}))
	assert.Error(t, err)
}
