package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pvd/internal/structures"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Monitor: structures.MonitorConfig{
			PollInterval: 30 * time.Second,
			ErrorBackoff: 60 * time.Second,
			SourceURL:    "http://127.0.0.1:9000/entities",
		},
		Storage: structures.StorageConfig{
			Path: "/tmp/pvd.db",
		},
		Analytics: structures.AnalyticsConfig{
			RollupInterval:    time.Hour,
			DefaultWindowDays: 30,
			MaxWindowDays:     365,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MissingSourceURL(t *testing.T) {
	c := validConfig()
	c.Monitor.SourceURL = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPollInterval(t *testing.T) {
	c := validConfig()
	c.Monitor.PollInterval = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MissingStoragePath(t *testing.T) {
	c := validConfig()
	c.Storage.Path = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_EmptyLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}
