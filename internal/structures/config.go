package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type MonitorConfig struct {
	PollInterval time.Duration `yaml:"pollInterval" validate:"required|min:1"`
	ErrorBackoff time.Duration `yaml:"errorBackoff" validate:"required|min:1"`
	SourceURL    string        `yaml:"sourceUrl" validate:"required"`
	SelfID       int64         `yaml:"selfId"`
	AutoStart    bool          `yaml:"autoStart"`
}

type StorageConfig struct {
	Path string `yaml:"path" validate:"required|unixPath"`
}

type AnalyticsConfig struct {
	RollupInterval    time.Duration `yaml:"rollupInterval" validate:"required|min:1"`
	DefaultWindowDays int           `yaml:"defaultWindowDays"`
	MaxWindowDays     int           `yaml:"maxWindowDays"`
}

type ArchiveConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	Interval  time.Duration `yaml:"interval"`
	Retention int           `yaml:"retention"`
}

type AlertsConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Monitor   MonitorConfig   `yaml:"monitor"`
	Storage   StorageConfig   `yaml:"storage"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	WebServer Server          `yaml:"webServer"`
	Logger    LoggerConfig    `yaml:"logger"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}
